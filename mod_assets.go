package light2d

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type AssetId string

type TextureAsset struct {
	version uint
	Image   *image.RGBA
}

func (t TextureAsset) Size() (uint32, uint32) {
	b := t.Image.Bounds()
	return uint32(b.Dx()), uint32(b.Dy())
}

type ShaderAsset struct {
	version uint
	path    string
	Source  string
}

// AssetServer owns decoded textures and shader sources, keyed by AssetId.
type AssetServer struct {
	textures map[AssetId]TextureAsset
	shaders  map[AssetId]ShaderAsset
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(NewAssetServer())
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		textures: make(map[AssetId]TextureAsset),
		shaders:  make(map[AssetId]ShaderAsset),
	}
}

// CreateTexture registers an in-memory image.
func (server *AssetServer) CreateTexture(img image.Image) AssetId {
	id := makeAssetId()
	server.textures[id] = TextureAsset{Image: toRGBA(img)}
	return id
}

// DecodeTexture reads a PNG, JPEG, BMP or WebP image.
func (server *AssetServer) DecodeTexture(r io.Reader) (AssetId, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode texture: %w", err)
	}
	return server.CreateTexture(img), nil
}

func (server *AssetServer) LoadTexture(filename string) (AssetId, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("load texture: %w", err)
	}
	defer file.Close()

	id, err := server.DecodeTexture(file)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filename, err)
	}
	return id, nil
}

func (server *AssetServer) Texture(id AssetId) (TextureAsset, bool) {
	t, ok := server.textures[id]
	return t, ok
}

// LoadShader reads a WGSL file. ReloadShader picks up later edits.
func (server *AssetServer) LoadShader(filename string) (AssetId, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("load shader: %w", err)
	}
	id := makeAssetId()
	server.shaders[id] = ShaderAsset{path: filename, Source: string(src)}
	return id, nil
}

func (server *AssetServer) Shader(id AssetId) (ShaderAsset, bool) {
	s, ok := server.shaders[id]
	return s, ok
}

// ReloadShader re-reads the shader file and reports whether its source
// changed.
func (server *AssetServer) ReloadShader(id AssetId) (bool, error) {
	s, ok := server.shaders[id]
	if !ok {
		return false, fmt.Errorf("unknown shader asset %q", id)
	}
	src, err := os.ReadFile(s.path)
	if err != nil {
		return false, fmt.Errorf("reload shader: %w", err)
	}
	if string(src) == s.Source {
		return false, nil
	}
	s.Source = string(src)
	s.version++
	server.shaders[id] = s
	return true, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
