package light2d

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAssetServer_DecodeTexture(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	server := NewAssetServer()
	id, err := server.DecodeTexture(bytes.NewReader(encodePNG(t, src)))
	require.NoError(t, err)

	tex, ok := server.Texture(id)
	require.True(t, ok)
	w, h := tex.Size()
	assert.Equal(t, uint32(3), w)
	assert.Equal(t, uint32(2), h)
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, tex.Image.RGBAAt(2, 1))
}

func TestAssetServer_DecodeTextureRejectsGarbage(t *testing.T) {
	server := NewAssetServer()
	_, err := server.DecodeTexture(strings.NewReader("not an image"))
	assert.Error(t, err)
}

func TestAssetServer_LoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, image.NewRGBA(image.Rect(0, 0, 4, 4))), 0o644))

	server := NewAssetServer()
	id, err := server.LoadTexture(path)
	require.NoError(t, err)
	_, ok := server.Texture(id)
	assert.True(t, ok)

	_, err = server.LoadTexture(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestAssetServer_CreateTextureNormalisesBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 8))
	src.SetRGBA(5, 5, color.RGBA{R: 255, A: 255})

	server := NewAssetServer()
	tex, ok := server.Texture(server.CreateTexture(src))
	require.True(t, ok)

	assert.Equal(t, image.Rect(0, 0, 2, 3), tex.Image.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, tex.Image.RGBAAt(0, 0))
}

func TestAssetServer_ShaderReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lighting.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("// v1"), 0o644))

	server := NewAssetServer()
	id, err := server.LoadShader(path)
	require.NoError(t, err)

	shader, ok := server.Shader(id)
	require.True(t, ok)
	assert.Equal(t, "// v1", shader.Source)

	changed, err := server.ReloadShader(id)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("// v2"), 0o644))
	changed, err = server.ReloadShader(id)
	require.NoError(t, err)
	assert.True(t, changed)
	shader, _ = server.Shader(id)
	assert.Equal(t, "// v2", shader.Source)

	require.NoError(t, os.Remove(path))
	_, err = server.ReloadShader(id)
	assert.Error(t, err)

	_, err = server.ReloadShader("unknown")
	assert.Error(t, err)
}

func TestAssetServerModule(t *testing.T) {
	app := NewAppBuilder().UseModule(AssetServerModule{}).Build()
	_, ok := Resource[AssetServer](app)
	assert.True(t, ok)
}
