package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/midbel/metapath/metapath"
	"github.com/midbel/metapath/node"
)

var errQuery = errors.New("invalid query")

const (
	searchSegment = "**"
	anySegment    = "*"
	flagMarker    = "@"
)

// buildQuery turns a list of segments into a path rooted at the document.
// A segment is a name, @name for a flag, * for any child, or ** to search the
// following segment among all the descendants.
func buildQuery(segments []string) (metapath.Expr, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no segment given", errQuery)
	}
	var (
		expr   metapath.Expr
		search bool
	)
	for _, seg := range segments {
		if seg == searchSegment {
			if search {
				return nil, fmt.Errorf("%w: repeated %s", errQuery, searchSegment)
			}
			search = true
			continue
		}
		step, err := segmentStep(seg)
		if err != nil {
			return nil, err
		}
		switch {
		case expr == nil && search:
			expr = metapath.RootSearch(step)
		case expr == nil:
			expr = metapath.RootPath(step)
		case search:
			expr = metapath.RelativeSearch(expr, step)
		default:
			expr = metapath.RelativePath(expr, step)
		}
		search = false
	}
	if search {
		return nil, fmt.Errorf("%w: %s should be followed by a name", errQuery, searchSegment)
	}
	return expr, nil
}

func segmentStep(seg string) (metapath.Expr, error) {
	axis := metapath.AxisChild
	if strings.HasPrefix(seg, flagMarker) {
		axis = metapath.AxisFlag
		seg = strings.TrimPrefix(seg, flagMarker)
	}
	if seg == anySegment {
		return metapath.Step(axis, metapath.AnyName())
	}
	name, err := node.ParseName(seg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errQuery, err)
	}
	return metapath.Step(axis, metapath.NameTest(name))
}
