package legacy

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeDecoder decodes every file to a constant grid, failing on file
// names it was told to reject.
type fakeDecoder struct {
	fail map[string]bool
}

func (d fakeDecoder) Decode(_ context.Context, file string, width, height int) ([][]int32, error) {
	if d.fail[file] {
		return nil, fmt.Errorf("unpack failed: %s", file)
	}
	img := make([][]int32, height)
	for r := range img {
		img[r] = make([]int32, width)
	}
	return img, nil
}

func TestConvertRequiresDecoder(t *testing.T) {
	_, err := Convert(context.Background(), nil, []string{"a.dat"}, 4, 3, func(int, string, [][]int32) error { return nil }, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestConvertSkipsFailedFiles(t *testing.T) {
	dec := fakeDecoder{fail: map[string]bool{"b.dat": true}}
	var got []string
	n, err := Convert(context.Background(), dec, []string{"a.dat", "b.dat", "c.dat"}, 4, 3,
		func(_ int, file string, img [][]int32) error {
			got = append(got, file)
			return nil
		}, nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if n != 2 {
		t.Errorf("converted = %d, want 2", n)
	}
	if len(got) != 2 || got[0] != "a.dat" || got[1] != "c.dat" {
		t.Errorf("sink received %v, want [a.dat c.dat]", got)
	}
}

func TestConvertSinkErrorAborts(t *testing.T) {
	dec := fakeDecoder{}
	sinkErr := errors.New("disk full")
	_, err := Convert(context.Background(), dec, []string{"a.dat", "b.dat"}, 4, 3,
		func(int, string, [][]int32) error { return sinkErr }, nil)
	if !errors.Is(err, sinkErr) {
		t.Errorf("err = %v, want the sink error", err)
	}
}

func TestConvertCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dec := fakeDecoder{}
	_, err := Convert(ctx, dec, []string{"a.dat"}, 4, 3,
		func(int, string, [][]int32) error { return nil }, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
