package pipeline

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/url"
	"strings"

	"github.com/go-playground/form/v4"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/validation"
)

// formDecoder reads the same field names as encoding/json.
var formDecoder = func() *form.Decoder {
	d := form.NewDecoder()
	d.SetTagName("json")
	return d
}()

// Normalizer is implemented by request types that clean up their fields
// (trimming, lowercasing) after decoding and before validation.
type Normalizer interface {
	Normalize()
}

// Bind decodes the request body into dst and validates it. JSON bodies and
// URL-encoded forms are accepted; form keys may be flat ("title") or grouped
// the way HTML forms name them ("campground[title]").
func (c *Context) Bind(dst any) error {
	if err := c.decode(dst); err != nil {
		return err
	}
	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}
	return validation.Struct(dst)
}

func (c *Context) decode(dst any) error {
	r := c.Request
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return apperror.NewBadRequestError("malformed JSON body", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return apperror.NewBadRequestError("malformed form body", err)
	}
	if err := formDecoder.Decode(dst, flattenForm(r.PostForm)); err != nil {
		return apperror.NewBadRequestError("malformed form body", err)
	}
	return nil
}

// flattenForm strips the group from "group[field]" keys and drops the
// method override field.
func flattenForm(in url.Values) url.Values {
	out := make(url.Values, len(in))
	for k, v := range in {
		if k == methodField {
			continue
		}
		if open := strings.IndexByte(k, '['); open > 0 && strings.HasSuffix(k, "]") {
			k = k[open+1 : len(k)-1]
		}
		out[k] = append(out[k], v...)
	}
	return out
}
