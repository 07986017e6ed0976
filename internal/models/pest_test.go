package models

import (
	"testing"
	"time"
)

func int64Ptr(v int64) *int64 { return &v }

func TestPestObservation_Validate(t *testing.T) {
	date := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		obs       PestObservation
		wantField string
	}{
		{
			name: "valid count observation",
			obs:  PestObservation{AreaPointID: "AP-001", PestType: PestTypeRBB, Date: date, Count: int64Ptr(12)},
		},
		{
			name: "valid density observation",
			obs:  PestObservation{AreaPointID: "AP-001", PestType: PestTypeWSB, Date: date, Density: floatPtr(0.8)},
		},
		{
			name: "zero count is a real observation",
			obs:  PestObservation{AreaPointID: "AP-001", PestType: PestTypeRBB, Date: date, Count: int64Ptr(0)},
		},
		{
			name:      "unknown pest type",
			obs:       PestObservation{AreaPointID: "AP-001", PestType: "locust", Date: date, Count: int64Ptr(1)},
			wantField: "pest_type",
		},
		{
			name:      "neither count nor density",
			obs:       PestObservation{AreaPointID: "AP-001", PestType: PestTypeRBB, Date: date},
			wantField: "count",
		},
		{
			name:      "negative count",
			obs:       PestObservation{AreaPointID: "AP-001", PestType: PestTypeRBB, Date: date, Count: int64Ptr(-1)},
			wantField: "count",
		},
		{
			name:      "negative density",
			obs:       PestObservation{AreaPointID: "AP-001", PestType: PestTypeWSB, Date: date, Density: floatPtr(-0.1)},
			wantField: "density",
		},
		{
			name:      "missing area point",
			obs:       PestObservation{PestType: PestTypeRBB, Date: date, Count: int64Ptr(1)},
			wantField: "area_point_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.obs.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}

			vErr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}
