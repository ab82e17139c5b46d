package http

import (
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-outlets-api/internal/domain"
)

const (
	proofField    = "proof"
	payloadField  = "payload"
	maxProofBytes = 8 << 20
)

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// readProof lee el comprobante fotográfico opcional (campo "proof" de un multipart).
// Sin multipart o sin archivo devuelve nil.
func readProof(c *fiber.Ctx) ([]byte, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: formulario inválido", domain.ErrInvalidInput)
	}
	files := form.File[proofField]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	if fh.Size > maxProofBytes {
		return nil, fmt.Errorf("%w: el comprobante supera %d MB", domain.ErrInvalidInput, maxProofBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: comprobante ilegible", domain.ErrInvalidInput)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxProofBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: comprobante ilegible", domain.ErrInvalidInput)
	}
	return data, nil
}

// parsePayload decodifica el cuerpo: JSON directo, o el campo "payload" (JSON) de un multipart
// cuando la petición adjunta un comprobante.
func parsePayload(c *fiber.Ctx, out interface{}) error {
	if !isMultipart(c) {
		return parseBody(c, out)
	}
	raw := c.FormValue(payloadField)
	if raw == "" {
		return fmt.Errorf("%w: falta el campo %s", domain.ErrInvalidInput, payloadField)
	}
	if err := c.App().Config().JSONDecoder([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %s no es JSON válido", domain.ErrInvalidInput, payloadField)
	}
	return validateStruct(out)
}
