package metapath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct(t *testing.T) {
	tests := []struct {
		Name     string
		Dims     []Sequence
		Expected []string
	}{
		{
			Name:     "single",
			Dims:     []Sequence{NewSequence(NewInteger(1), NewInteger(2))},
			Expected: []string{"1", "2"},
		},
		{
			Name: "pairs",
			Dims: []Sequence{
				NewSequence(NewString("a"), NewString("b")),
				NewSequence(NewInteger(1), NewInteger(2), NewInteger(3)),
			},
			Expected: []string{"a1", "a2", "a3", "b1", "b2", "b3"},
		},
		{
			Name: "empty-dimension",
			Dims: []Sequence{NewSequence(NewInteger(1)), EmptySequence()},
		},
		{
			Name: "no-dimension",
		},
	}
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			var got []string
			for tuple := range Product(c.Dims...) {
				var str strings.Builder
				for _, item := range tuple {
					str.WriteString(item.(Atomic).String())
				}
				got = append(got, str.String())
			}
			assert.Equal(t, c.Expected, got)
		})
	}
}

func TestProductStop(t *testing.T) {
	var count int
	dims := []Sequence{
		NewSequence(NewInteger(1), NewInteger(2)),
		NewSequence(NewInteger(1), NewInteger(2)),
	}
	for range Product(dims...) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}
