package pipeline

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/errors"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout validates in and computes its layout.
//
// On top of the chart contract checked by [bullet.Configure], every item's
// class list and ID must be safe to place in HTML and SVG attributes.
// All failures are returned as INVALID_INPUT (or INVALID_CLASS) errors.
func ComputeLayout(in bullet.Input) (*bullet.Layout, error) {
	l, err := bullet.Configure(in)
	if err != nil {
		var verr *bullet.ValidationError
		if stderrors.As(err, &verr) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: %s", verr.Field, verr.Reason)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "compute layout")
	}
	// Contract violations take precedence over markup errors.
	if err := ValidateMarkup(in); err != nil {
		return nil, err
	}
	return l, nil
}

// ValidateMarkup checks the attribute-bound fields of every item.
func ValidateMarkup(in bullet.Input) error {
	check := func(field string, it bullet.Item) error {
		if err := errors.ValidateClassName(it.Class); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "%s: %s", field, errors.UserMessage(err))
		}
		if err := errors.ValidateItemID(it.ID); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "%s: %s", field, errors.UserMessage(err))
		}
		return nil
	}
	for _, set := range []struct {
		field string
		items []bullet.Item
	}{{"values", in.Values}, {"secondary_values", in.SecondaryValues}} {
		for i, it := range set.items {
			if err := check(fmt.Sprintf("%s[%d]", set.field, i), it); err != nil {
				return err
			}
		}
	}
	for _, single := range []struct {
		field string
		item  *bullet.Item
	}{{"primary_target", in.PrimaryTarget}, {"secondary_target", in.SecondaryTarget}, {"scale", in.Scale}} {
		if single.item == nil {
			continue
		}
		if err := check(single.field, *single.item); err != nil {
			return err
		}
	}
	return nil
}

// Cacheable reports whether in survives a JSON round trip unchanged, so
// that its layout may be stored and its hash identifies it. Fragment
// labels built in Go (e.g. template.HTML) do not.
func Cacheable(in bullet.Input) bool {
	ok := func(it bullet.Item) bool {
		f, isFrag := it.Label.Fragment()
		if !isFrag {
			return true
		}
		_, raw := f.(json.RawMessage)
		return raw
	}
	for _, set := range [][]bullet.Item{in.Values, in.SecondaryValues} {
		for _, it := range set {
			if !ok(it) {
				return false
			}
		}
	}
	for _, it := range []*bullet.Item{in.PrimaryTarget, in.SecondaryTarget, in.Scale} {
		if it != nil && !ok(*it) {
			return false
		}
	}
	return true
}
