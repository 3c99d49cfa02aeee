package milvus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkTextCodec(t *testing.T) {
	encoded := encodeChunkText(ChunkMeta{Section: "Capítulo 2 > Transparencia"}, "Texto del capítulo.")

	meta, text := decodeChunkText(encoded)
	assert.Equal(t, "Capítulo 2 > Transparencia", meta.Section)
	assert.Equal(t, "Texto del capítulo.", text)
}

func TestDecodeChunkTextWithoutMeta(t *testing.T) {
	meta, text := decodeChunkText("  Texto plano sin prefijo.  ")
	assert.Empty(t, meta.Section)
	assert.Equal(t, "Texto plano sin prefijo.", text)
}

func TestDecodeChunkTextCorruptMeta(t *testing.T) {
	// 元信息行损坏时降级为纯文本
	meta, text := decodeChunkText("@@meta:{no es json\ncuerpo del texto")
	assert.Empty(t, meta.Section)
	assert.Equal(t, "cuerpo del texto", text)
}

func TestEncodeChunkTextEmptySection(t *testing.T) {
	meta, text := decodeChunkText(encodeChunkText(ChunkMeta{}, "solo texto"))
	assert.Empty(t, meta.Section)
	assert.Equal(t, "solo texto", text)
}

func TestEscapeFilterValue(t *testing.T) {
	assert.Equal(t, `informe \"anual\"`, escapeFilterValue(`informe "anual"`))
	assert.Equal(t, `ruta\\doc.pdf`, escapeFilterValue(`ruta\doc.pdf`))
	assert.Equal(t, "normal.pdf", escapeFilterValue("normal.pdf"))
}
