package material

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jinzhu/copier"

	"github.com/Shanyu-Yun/RenderV2/internal/mathx"
	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
	"github.com/Shanyu-Yun/RenderV2/rescache"
	"github.com/Shanyu-Yun/RenderV2/texio"
)

// dtoTextures mirrors the JSON schema's "textures" object: relative
// paths, not yet resolved against a base directory or cache id.
type dtoTextures struct {
	BaseColor string `json:"baseColor"`
	Metallic  string `json:"metallic"`
	Roughness string `json:"roughness"`
	Normal    string `json:"normal"`
	Occlusion string `json:"occlusion"`
	Emissive  string `json:"emissive"`
}

type dtoFactors struct {
	BaseColor   *[4]float32 `json:"baseColor"`
	Metallic    *float32    `json:"metallic"`
	Roughness   *float32    `json:"roughness"`
	Emissive    *[3]float32 `json:"emissive"`
	NormalScale *float32    `json:"normalScale"`
}

type dtoAlpha struct {
	Mode        string   `json:"mode"`
	Cutoff      *float32 `json:"cutoff"`
	DoubleSided bool     `json:"doubleSided"`
}

type dtoOptical struct {
	RefractionIndex *float32 `json:"refractionIndex"`
}

// dto is the raw shape of the Material JSON schema (§6). Every field is
// optional; Load fills in defaults for anything absent.
type dto struct {
	Name     string      `json:"name"`
	Domain   string      `json:"domain"`
	Textures dtoTextures `json:"textures"`
	Factors  dtoFactors  `json:"factors"`
	Alpha    dtoAlpha    `json:"alpha"`
	Optical  dtoOptical  `json:"optical"`
}

func f32(p *float32, def float32) float32 {
	if p == nil {
		return def
	}
	return *p
}

func vec4(p *[4]float32, def mathx.Vec4) mathx.Vec4 {
	if p == nil {
		return def
	}
	return mathx.Vec4{X: p[0], Y: p[1], Z: p[2], W: p[3]}
}

func vec3(p *[3]float32, def mathx.Vec3) mathx.Vec3 {
	if p == nil {
		return def
	}
	return mathx.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

// Load reads and parses the material JSON file at path, resolving every
// texture path relative to the file's directory and eagerly loading it
// into textures, storing the resulting cache ids on the record.
func Load(path string, textures *rescache.TextureCache) (*PBRMaterial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("material: read %s: %w", path, renderr.FileSystem)
	}
	var raw dto
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("material: parse %s: %w", path, renderr.InvalidArgument)
	}

	base := filepath.Dir(path)
	resolve := func(rel string) (string, error) {
		if rel == "" {
			return "", nil
		}
		return textures.Load(filepath.Join(base, rel), texio.Options{})
	}

	var m PBRMaterial
	if err := copier.CopyWithOption(&m, &raw, copier.Option{CaseSensitive: true, IgnoreEmpty: true}); err != nil {
		return nil, fmt.Errorf("material: copy record: %w", err)
	}

	for target, rel := range map[*string]string{
		&m.Textures.BaseColor: raw.Textures.BaseColor,
		&m.Textures.Metallic:  raw.Textures.Metallic,
		&m.Textures.Roughness: raw.Textures.Roughness,
		&m.Textures.Normal:    raw.Textures.Normal,
		&m.Textures.Occlusion: raw.Textures.Occlusion,
		&m.Textures.Emissive:  raw.Textures.Emissive,
	} {
		id, err := resolve(rel)
		if err != nil {
			return nil, err
		}
		*target = id
	}

	m.Factors = Factors{
		BaseColor:   vec4(raw.Factors.BaseColor, mathx.Vec4{X: 1, Y: 1, Z: 1, W: 1}),
		Metallic:    f32(raw.Factors.Metallic, 1),
		Roughness:   f32(raw.Factors.Roughness, 1),
		Emissive:    vec3(raw.Factors.Emissive, mathx.Vec3{}),
		NormalScale: f32(raw.Factors.NormalScale, 1),
	}
	m.Alpha = Alpha{
		Mode:        parseAlphaMode(raw.Alpha.Mode),
		Cutoff:      f32(raw.Alpha.Cutoff, 0.5),
		DoubleSided: raw.Alpha.DoubleSided,
	}
	m.Optical = Optical{RefractionIndex: f32(raw.Optical.RefractionIndex, 1.0)}

	return &m, nil
}
