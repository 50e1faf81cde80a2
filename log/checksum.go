package log

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"io"
)

// checksumWriter prepends the CRC32 checksum of each line written to it
// before passing the line through to an inner io.Writer. slog handlers issue
// exactly one Write per record, so each Write is one line.
type checksumWriter struct {
	inner io.Writer
}

// NewChecksumWriter returns a checksumWriter which wraps the given io.Writer.
func NewChecksumWriter(inner io.Writer) io.Writer {
	return &checksumWriter{inner: inner}
}

func (w *checksumWriter) Write(in []byte) (int, error) {
	var out bytes.Buffer
	out.WriteString(LogLineChecksum(string(in)))
	out.WriteByte(' ')
	out.Write(in)
	_, err := out.WriteTo(w.inner)
	if err != nil {
		return 0, err
	}
	return len(in), nil
}

// LogLineChecksum computes a CRC32 over the log line, which can be checked to
// ensure no unexpected log corruption has occurred.
func LogLineChecksum(line string) string {
	crc := crc32.ChecksumIEEE([]byte(line))
	buf := make([]byte, crc32.Size)
	binary.LittleEndian.PutUint32(buf, crc)
	return base64.RawURLEncoding.EncodeToString(buf)
}
