package zkproof

import (
	"testing"
)

func TestNewGroth16Verifier_MissingKeyFile(t *testing.T) {
	_, err := NewGroth16Verifier("testdata/does_not_exist.bin")
	if err == nil {
		t.Fatal("NewGroth16Verifier() expected error for missing key file")
	}
}

func TestDecodeG1(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(raw []byte)
		wantErr bool
	}{
		{
			// (1, 2) is the canonical generator
			name: "generator accepted",
			mutate: func(raw []byte) {
				raw[31] = 0x01
				raw[63] = 0x02
			},
			wantErr: false,
		},
		{
			name:    "all zeros rejected as infinity",
			mutate:  func(raw []byte) {},
			wantErr: true,
		},
		{
			name: "point off curve rejected",
			mutate: func(raw []byte) {
				raw[31] = 0x01
				raw[63] = 0x03
			},
			wantErr: true,
		},
		{
			name: "non-canonical coordinate rejected",
			mutate: func(raw []byte) {
				for i := 0; i < 32; i++ {
					raw[i] = 0xff
				}
				raw[63] = 0x02
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw [64]byte
			tt.mutate(raw[:])

			_, err := decodeG1(raw[:])
			if (err != nil) != tt.wantErr {
				t.Errorf("decodeG1() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeG2_Rejections(t *testing.T) {
	// All zeros is the point at infinity
	var raw [128]byte
	if _, err := decodeG2(raw[:]); err == nil {
		t.Error("decodeG2() accepted the point at infinity")
	}

	// A small arbitrary point is overwhelmingly unlikely to lie on the twist
	raw[31] = 0x07
	raw[63] = 0x0b
	raw[95] = 0x0d
	raw[127] = 0x11
	if _, err := decodeG2(raw[:]); err == nil {
		t.Error("decodeG2() accepted an off-curve point")
	}

	// Non-canonical coordinate
	for i := 0; i < 32; i++ {
		raw[i] = 0xff
	}
	if _, err := decodeG2(raw[:]); err == nil {
		t.Error("decodeG2() accepted a non-canonical coordinate")
	}
}
