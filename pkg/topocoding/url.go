package topocoding

import (
	"fmt"

	"github.com/yosida95/uritemplate/v3"
)

// altitudeTemplate composes the altitude endpoint URL. The encoded
// coordinates use reserved expansion so the alphabet's sub-delimiters
// ("!*()") are sent literally instead of percent-encoded.
var altitudeTemplate = uritemplate.MustNew("{+base}/api/altitude_v1.php{?id,key}&l={+l}")

func buildURL(base, id, key, encoded string) (string, error) {
	vars := uritemplate.Values{}
	vars.Set("base", uritemplate.String(base))
	vars.Set("id", uritemplate.String(id))
	vars.Set("key", uritemplate.String(key))
	vars.Set("l", uritemplate.String(encoded))

	u, err := altitudeTemplate.Expand(vars)
	if err != nil {
		return "", fmt.Errorf("failed to expand URL template: %w", err)
	}
	return u, nil
}
