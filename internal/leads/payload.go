package leads

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/stratalace/site/internal/form"
	"github.com/stratalace/site/internal/scoring"
)

const (
	// ScoreField carries the JSON-encoded lead score in the multipart payload.
	ScoreField = "leadScore"
	// IdempotencyHeader carries the wizard session id so retries are deduplicated.
	IdempotencyHeader = "Idempotency-Key"

	maxPayloadBytes = 1 << 20
)

// Payload is the flat transport form of a wizard submission.
type Payload struct {
	Fields         map[string]string
	LeadScore      string
	IdempotencyKey string
}

// NewPayload flattens fields and serializes score.
func NewPayload(f form.Fields, score scoring.LeadScore, idempotencyKey string) Payload {
	return Payload{
		Fields:         f.Flatten(),
		LeadScore:      score.Encode(),
		IdempotencyKey: idempotencyKey,
	}
}

// Values returns the payload as a single flat map including the score.
func (p Payload) Values() map[string]string {
	out := make(map[string]string, len(p.Fields)+1)
	for k, v := range p.Fields {
		out[k] = v
	}
	if p.LeadScore != "" {
		out[ScoreField] = p.LeadScore
	}
	return out
}

// Encode writes the payload as multipart/form-data, keys in sorted order.
func (p Payload) Encode() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	values := p.Values()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, values[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

// ErrNotMultipart is returned by FromRequest for non-form bodies.
var ErrNotMultipart = errors.New("request is not a form submission")

// FromRequest decodes a multipart (or urlencoded) lead submission.
func FromRequest(r *http.Request) (Payload, error) {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxPayloadBytes); err != nil {
			return Payload{}, fmt.Errorf("parse multipart form: %w", err)
		}
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return Payload{}, fmt.Errorf("parse form: %w", err)
		}
	default:
		return Payload{}, ErrNotMultipart
	}
	p := Payload{
		Fields:         map[string]string{},
		IdempotencyKey: strings.TrimSpace(r.Header.Get(IdempotencyHeader)),
	}
	for k, vs := range r.PostForm {
		if len(vs) == 0 {
			continue
		}
		if k == ScoreField {
			p.LeadScore = vs[0]
			continue
		}
		if form.Known(k) {
			p.Fields[k] = vs[0]
		}
	}
	return p, nil
}

// FormFields rebuilds the wizard field bag from the flat payload.
func (p Payload) FormFields() form.Fields {
	return form.FromFlat(p.Fields)
}
