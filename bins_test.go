package binpool

import (
	"fmt"
	"strings"
	"testing"
)

func TestBinsValidate(t *testing.T) {
	t.Run("Valid bins", func(t *testing.T) {
		for _, bins := range []Bins{testBins, DefaultBins(), {{BufferSize: 1, Count: 1}}} {
			if err := bins.Validate(); err != nil {
				t.Errorf("expected valid bins %v, got error: %v", bins, err)
			}
		}
	})

	t.Run("Too many bins", func(t *testing.T) {
		bins := make(Bins, MaxBins+1)
		for i := range bins {
			bins[i] = Bin{BufferSize: 8, Count: 1}
		}
		err := bins.Validate()
		if err == nil {
			t.Fatal("expected an error for too many bins, but got nil")
		}
		expected := fmt.Sprintf("invalid bins: %d bins exceed the maximum of %d", MaxBins+1, MaxBins)
		if err.Error() != expected {
			t.Errorf("expected error %q, got %q", expected, err.Error())
		}
	})

	t.Run("No buffers", func(t *testing.T) {
		for _, bins := range []Bins{nil, {{BufferSize: 8, Count: 0}}} {
			err := bins.Validate()
			if err == nil || !strings.Contains(err.Error(), "declares no buffers") {
				t.Errorf("expected a no buffers error for %v, got %v", bins, err)
			}
		}
	})

	t.Run("Multiple invalid fields", func(t *testing.T) {
		bins := Bins{
			{BufferSize: 8, Count: -1},
			{BufferSize: 0, Count: 2},
			{BufferSize: MaxBufferSize + 1, Count: 1},
		}
		err := bins.Validate()
		if err == nil {
			t.Fatal("expected an error for multiple invalid fields, but got nil")
		}
		errString := err.Error()
		for _, want := range []string{
			"bin 0 has negative count -1",
			"bin 1 has buffer size 0",
			fmt.Sprintf("bin 2 buffer size %d exceeds", MaxBufferSize+1),
		} {
			if !strings.Contains(errString, want) {
				t.Errorf("error message missing %q: got %q", want, errString)
			}
		}
		if strings.Contains(errString, "declares no buffers") {
			t.Errorf("unexpected no buffers error alongside field errors: %q", errString)
		}
	})
}

func TestBinsLayout(t *testing.T) {
	l := testBins.Layout()
	want := Layout{
		Slots:         5,
		MetadataBytes: 5 * SlotMetadataSize,
		PayloadBytes:  8*2 + 16*3,
		TotalBytes:    5*SlotMetadataSize + 8*2 + 16*3,
	}
	l.Fingerprint, want.Fingerprint = 0, 0
	if l != want {
		t.Errorf("expected layout %+v, got %+v", want, l)
	}

	t.Run("Fingerprint ignores empty bins", func(t *testing.T) {
		padded := Bins{{BufferSize: 8, Count: 2}, {BufferSize: 99, Count: 0}, {BufferSize: 16, Count: 3}}
		if testBins.Layout().Fingerprint != padded.Layout().Fingerprint {
			t.Error("expected empty bins not to change the fingerprint")
		}
	})

	t.Run("Fingerprint depends on order", func(t *testing.T) {
		reversed := Bins{testBins[1], testBins[0]}
		if testBins.Layout().Fingerprint == reversed.Layout().Fingerprint {
			t.Error("expected reordered bins to change the fingerprint")
		}
	})
}
