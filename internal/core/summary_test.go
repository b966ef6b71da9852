package core

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

const equipmentHeader = "Equipment Name,Type,Flowrate,Pressure,Temperature\n"

func mustParse(t *testing.T, csv string) *Table {
	t.Helper()
	tbl, err := ParseTable([]byte(csv))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	return tbl
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want Stats
	}{
		{
			name: "pump and valve",
			csv: equipmentHeader +
				"Pump1,Pump,10,5,20\n" +
				"Valve1,Valve,0,3,15\n",
			want: Stats{
				TotalCount:       2,
				AvgFlowrate:      5.0,
				AvgPressure:      4.0,
				AvgTemperature:   17.5,
				TypeDistribution: TypeDistribution{"Pump": 1, "Valve": 1},
			},
		},
		{
			name: "header only",
			csv:  equipmentHeader,
			want: Stats{
				TotalCount:       0,
				TypeDistribution: TypeDistribution{},
			},
		},
		{
			name: "extra columns ignored and order irrelevant",
			csv: "Temperature,Notes,Type,Pressure,Flowrate,Equipment Name\n" +
				"100,hot,Reactor,2.5,1.5,R1\n" +
				"50,,Reactor,7.5,2.5,R2\n" +
				"75,x,Pump,5,5,P1\n",
			want: Stats{
				TotalCount:       3,
				AvgFlowrate:      3.0,
				AvgPressure:      5.0,
				AvgTemperature:   75.0,
				TypeDistribution: TypeDistribution{"Reactor": 2, "Pump": 1},
			},
		},
		{
			name: "missing cells excluded from averages",
			csv: equipmentHeader +
				"P1,Pump,10,,20\n" +
				"P2,Pump,NaN,4,\n" +
				"P3,Pump,20,6,NA\n",
			want: Stats{
				TotalCount:       3,
				AvgFlowrate:      15.0,
				AvgPressure:      5.0,
				AvgTemperature:   20.0,
				TypeDistribution: TypeDistribution{"Pump": 3},
			},
		},
		{
			name: "column without numbers averages to zero",
			csv: equipmentHeader +
				"P1,Pump,1,,\n" +
				"P2,Pump,3,,\n",
			want: Stats{
				TotalCount:       2,
				AvgFlowrate:      2.0,
				TypeDistribution: TypeDistribution{"Pump": 2},
			},
		},
		{
			name: "missing type counted under empty label",
			csv: equipmentHeader +
				"P1,,1,1,1\n" +
				"P2,Pump,1,1,1\n",
			want: Stats{
				TotalCount:       2,
				AvgFlowrate:      1,
				AvgPressure:      1,
				AvgTemperature:   1,
				TypeDistribution: TypeDistribution{"": 1, "Pump": 1},
			},
		},
		{
			name: "type labels are literal and case sensitive",
			csv: equipmentHeader +
				"P1,pump,1,1,1\n" +
				"P2,Pump,1,1,1\n" +
				"P3,Pump ,1,1,1\n",
			want: Stats{
				TotalCount:       3,
				AvgFlowrate:      1,
				AvgPressure:      1,
				AvgTemperature:   1,
				TypeDistribution: TypeDistribution{"pump": 1, "Pump": 1, "Pump ": 1},
			},
		},
		{
			name: "scientific notation and signs",
			csv: equipmentHeader +
				"HX1,HeatExchanger,1e2,-2.5,+3\n" +
				"HX2,HeatExchanger,.5,2.5,-3\n",
			want: Stats{
				TotalCount:       2,
				AvgFlowrate:      50.25,
				AvgPressure:      0,
				AvgTemperature:   0,
				TypeDistribution: TypeDistribution{"HeatExchanger": 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Summarize(mustParse(t, tt.csv))
			if err != nil {
				t.Fatalf("Summarize() error = %v", err)
			}

			if got.TotalCount != tt.want.TotalCount {
				t.Errorf("TotalCount = %d, want %d", got.TotalCount, tt.want.TotalCount)
			}
			if !almostEqual(got.AvgFlowrate, tt.want.AvgFlowrate) {
				t.Errorf("AvgFlowrate = %v, want %v", got.AvgFlowrate, tt.want.AvgFlowrate)
			}
			if !almostEqual(got.AvgPressure, tt.want.AvgPressure) {
				t.Errorf("AvgPressure = %v, want %v", got.AvgPressure, tt.want.AvgPressure)
			}
			if !almostEqual(got.AvgTemperature, tt.want.AvgTemperature) {
				t.Errorf("AvgTemperature = %v, want %v", got.AvgTemperature, tt.want.AvgTemperature)
			}
			if !reflect.DeepEqual(got.TypeDistribution, tt.want.TypeDistribution) {
				t.Errorf("TypeDistribution = %v, want %v", got.TypeDistribution, tt.want.TypeDistribution)
			}
		})
	}
}

func TestSummarize_MissingColumns(t *testing.T) {
	tests := []struct {
		name        string
		csv         string
		wantMissing []string
	}{
		{
			name:        "pressure and temperature absent",
			csv:         "Equipment Name,Type,Flowrate\nPump1,Pump,10\n",
			wantMissing: []string{"Pressure", "Temperature"},
		},
		{
			name:        "all absent",
			csv:         "a,b\n1,2\n",
			wantMissing: []string{"Equipment Name", "Type", "Flowrate", "Pressure", "Temperature"},
		},
		{
			name:        "header names are case sensitive",
			csv:         "equipment name,Type,Flowrate,Pressure,temperature\n",
			wantMissing: []string{"Equipment Name", "Temperature"},
		},
		{
			name:        "missing column wins over bad numbers",
			csv:         "Equipment Name,Type,Flowrate,Pressure\nP1,Pump,abc,x\n",
			wantMissing: []string{"Temperature"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Summarize(mustParse(t, tt.csv))

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Summarize() error = %v, want *ValidationError", err)
			}
			if verr.Kind != KindMissingColumns {
				t.Errorf("Kind = %q, want %q", verr.Kind, KindMissingColumns)
			}
			if !reflect.DeepEqual(verr.Missing, tt.wantMissing) {
				t.Errorf("Missing = %v, want %v", verr.Missing, tt.wantMissing)
			}
			for _, col := range tt.wantMissing {
				if !strings.Contains(verr.Error(), fmt.Sprintf("%q", col)) {
					t.Errorf("Error() = %q, should mention %q", verr.Error(), col)
				}
			}
		})
	}
}

func TestSummarize_MissingColumnsMessage(t *testing.T) {
	_, err := Summarize(mustParse(t, "Equipment Name,Type,Flowrate\n"))
	want := `missing required columns: ["Pressure", "Temperature"]`
	if err == nil || err.Error() != want {
		t.Errorf("Summarize() error = %v, want %q", err, want)
	}
}

func TestSummarize_NonNumericValue(t *testing.T) {
	csv := equipmentHeader +
		"P1,Pump,10,5,20\n" +
		"P2,Pump,ten,5,20\n"

	_, err := Summarize(mustParse(t, csv))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Summarize() error = %v, want *ValidationError", err)
	}
	if verr.Kind != KindAggregation {
		t.Errorf("Kind = %q, want %q", verr.Kind, KindAggregation)
	}
	want := `cannot aggregate column "Flowrate": invalid number "ten" on line 3`
	if verr.Error() != want {
		t.Errorf("Error() = %q, want %q", verr.Error(), want)
	}
}

func TestSummarize_LargeValues(t *testing.T) {
	t.Run("huge but representable mean", func(t *testing.T) {
		csv := equipmentHeader +
			"A,Pump,1e308,1,1\n" +
			"B,Pump,1e308,1,1\n"

		stats, err := Summarize(mustParse(t, csv))
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if stats.AvgFlowrate != 1e308 {
			t.Errorf("AvgFlowrate = %v, want 1e308", stats.AvgFlowrate)
		}
	})

	t.Run("mean out of range rejected", func(t *testing.T) {
		csv := equipmentHeader +
			"A,Pump,1.7e308,1,1\n" +
			"B,Pump,-1.7e308,1,1\n"

		_, err := Summarize(mustParse(t, csv))

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Summarize() error = %v, want *ValidationError", err)
		}
		if verr.Kind != KindAggregation {
			t.Errorf("Kind = %q, want %q", verr.Kind, KindAggregation)
		}
		want := `cannot aggregate column "Flowrate": average out of range at line 3`
		if verr.Error() != want {
			t.Errorf("Error() = %q, want %q", verr.Error(), want)
		}
	})

	t.Run("number beyond float64 rejected", func(t *testing.T) {
		_, err := Summarize(mustParse(t, equipmentHeader+"A,Pump,1e400,1,1\n"))
		if !IsValidation(err) {
			t.Fatalf("Summarize() error = %v, want ValidationError", err)
		}
	})
}

// TestSummarize_Properties checks count and distribution invariants over random tables.
func TestSummarize_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	types := []string{"Pump", "Valve", "Reactor", "Compressor", "", "NA"}

	for i := 0; i < 200; i++ {
		rows := rng.Intn(60)

		var b strings.Builder
		b.WriteString(equipmentHeader)
		for r := 0; r < rows; r++ {
			fmt.Fprintf(&b, "E%d,%s,%.3f,%.3f,%.3f\n", r,
				types[rng.Intn(len(types))],
				rng.Float64()*100, rng.Float64()*10, rng.Float64()*300)
		}

		stats, err := Summarize(mustParse(t, b.String()))
		if err != nil {
			t.Fatalf("iteration %d: Summarize() error = %v", i, err)
		}
		if stats.TotalCount != rows {
			t.Fatalf("iteration %d: TotalCount = %d, want %d", i, stats.TotalCount, rows)
		}
		if got := stats.TypeDistribution.Total(); got != rows {
			t.Fatalf("iteration %d: distribution sums to %d, want %d", i, got, rows)
		}
	}
}

func TestSummarize_MissingColumnsRegardlessOfRows(t *testing.T) {
	for _, rows := range []int{0, 1, 10, 500} {
		var b strings.Builder
		b.WriteString("Equipment Name,Flowrate,Pressure\n")
		for r := 0; r < rows; r++ {
			fmt.Fprintf(&b, "E%d,1,2\n", r)
		}

		_, err := Summarize(mustParse(t, b.String()))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("rows=%d: error = %v, want *ValidationError", rows, err)
		}
		if want := []string{"Type", "Temperature"}; !reflect.DeepEqual(verr.Missing, want) {
			t.Errorf("rows=%d: Missing = %v, want %v", rows, verr.Missing, want)
		}
	}
}

func TestSummarizeCSV_Malformed(t *testing.T) {
	_, _, err := SummarizeCSV(nil)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("SummarizeCSV() error = %v, want *ValidationError", err)
	}
	if verr.Kind != KindMalformed {
		t.Errorf("Kind = %q, want %q", verr.Kind, KindMalformed)
	}
}

func TestTypeDistribution_Sorted(t *testing.T) {
	d := TypeDistribution{"Valve": 2, "Pump": 5, "Compressor": 2, "Reactor": 1}
	want := []TypeCount{
		{Label: "Pump", Count: 5},
		{Label: "Compressor", Count: 2},
		{Label: "Valve", Count: 2},
		{Label: "Reactor", Count: 1},
	}
	if got := d.Sorted(); !reflect.DeepEqual(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}
	if got := d.Total(); got != 10 {
		t.Errorf("Total() = %d, want 10", got)
	}
}
