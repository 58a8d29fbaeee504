package device

import (
	"errors"
	"strings"
	"testing"
)

func validDevice() *Device {
	return &Device{
		Name:         "Garden Sprinkler",
		DeviceTypeID: "dtp-11111111",
		Latitude:     51.5074,
		Longitude:    -0.1278,
		Status:       "off",
	}
}

func TestValidateDevice(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Device)
		wantErr bool
	}{
		{"valid device", func(_ *Device) {}, false},
		{"blank name", func(d *Device) { d.Name = "  " }, true},
		{"name too long", func(d *Device) { d.Name = strings.Repeat("x", 129) }, true},
		{"missing type", func(d *Device) { d.DeviceTypeID = "" }, true},
		{"latitude too low", func(d *Device) { d.Latitude = -90.01 }, true},
		{"latitude too high", func(d *Device) { d.Latitude = 90.01 }, true},
		{"latitude boundary low", func(d *Device) { d.Latitude = -90 }, false},
		{"latitude boundary high", func(d *Device) { d.Latitude = 90 }, false},
		{"longitude too low", func(d *Device) { d.Longitude = -180.01 }, true},
		{"longitude too high", func(d *Device) { d.Longitude = 180.01 }, true},
		{"longitude boundary low", func(d *Device) { d.Longitude = -180 }, false},
		{"longitude boundary high", func(d *Device) { d.Longitude = 180 }, false},
		{"blank status", func(d *Device) { d.Status = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDevice()
			tt.mutate(d)

			err := ValidateDevice(d)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDevice() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDevice) {
				t.Errorf("error %v does not wrap ErrInvalidDevice", err)
			}
		})
	}
}

func TestValidateType(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		wantErr  bool
	}{
		{"valid", "thermostat", false},
		{"blank", "   ", true},
		{"too long", strings.Repeat("x", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateType(&DeviceType{Name: tt.typeName})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateType() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
