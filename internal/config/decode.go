package config

import (
	"fmt"

	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/go-viper/mapstructure/v2"
)

// decode maps an untyped config subtree onto out. Existing maps in out are merged
// into rather than replaced. Types are strict except that a comma separated string
// is accepted where a list of strings is expected.
func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		TagName:    "mapstructure",
		DecodeHook: mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("%w: %w", errz.ErrInvalidType, err)
	}
	return nil
}
