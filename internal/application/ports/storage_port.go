package ports

import "context"

// ObjectStorage puerto de salida hacia el almacenamiento de objetos (comprobantes fotográficos).
// Upload guarda data bajo folder y devuelve una URL opaca. Los errores envuelven domain.ErrUploadFailed,
// salvo un archivo que no es una imagen soportada (domain.ErrInvalidInput).
// Puede tener latencia alta: nunca se invoca con una transacción de ledger abierta.
type ObjectStorage interface {
	Upload(ctx context.Context, folder string, data []byte) (string, error)
}
