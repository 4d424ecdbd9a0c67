package transcriber

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// uploadForm is a multipart body split around the audio file so the file can
// be streamed from disk while the total length is known up front.
type uploadForm struct {
	head        []byte // file part header
	tail        []byte // remaining fields and closing boundary
	contentType string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type formField struct {
	name  string
	value string
}

// newUploadForm lays out a "file" part followed by the text fields in order.
func newUploadForm(filename string, fields ...formField) (*uploadForm, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", "audio/wav")
	if _, err := writer.CreatePart(h); err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	head := append([]byte(nil), buf.Bytes()...)
	buf.Reset()

	for _, f := range fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	return &uploadForm{
		head:        head,
		tail:        append([]byte(nil), buf.Bytes()...),
		contentType: writer.FormDataContentType(),
	}, nil
}

func (u *uploadForm) size(fileSize int64) int64 {
	return int64(len(u.head)) + fileSize + int64(len(u.tail))
}

func (u *uploadForm) reader(file io.Reader) io.Reader {
	return io.MultiReader(bytes.NewReader(u.head), file, bytes.NewReader(u.tail))
}

// progressReader reports how much of the body has been read.
type progressReader struct {
	r          io.Reader
	sent       int64
	total      int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.sent, p.total)
		}
	}
	return n, err
}
