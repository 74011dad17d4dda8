package asset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/georgemunganga/librarian/internal/apiclient"
)

const maxFormMemory = 10 << 20

// DecodeForm reads an entity payload for the console API. JSON bodies are
// decoded into v directly. Multipart bodies carry the JSON in the "data"
// field and an optional image in the "image" part, which is returned.
func DecodeForm(r *http.Request, v interface{}) (*apiclient.File, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		return nil, nil
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	if data := r.FormValue("data"); data != "" {
		if err := json.Unmarshal([]byte(data), v); err != nil {
			return nil, fmt.Errorf("decode data field: %w", err)
		}
	}
	part, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	defer part.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, part); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &apiclient.File{Name: header.Filename, Body: &buf}, nil
}
