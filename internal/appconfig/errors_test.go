package appconfig

import (
	"errors"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"duplicate key", errors.New(`duplicate key value violates unique constraint "app_configs_uuid_key"`), "DB001"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connection refused"), "DB002"},
		{"timeout", errors.New("query timeout"), "DB004"},
		{"cancelled", errors.New("context canceled"), "REQ001"},
		{"csv", errors.New("csv: write error"), "ENC001"},
		{"unknown", errors.New("something strange"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err); got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	if got := MapError(nil); got.Code != "" {
		t.Errorf("MapError(nil) = %+v, want zero value", got)
	}
}
