package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/texray/pkg/math3d"
)

// LoadGLB loads a binary GLTF (.glb) file into a Scene.
func LoadGLB(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return SceneFromGLTF(doc, filepath.Base(path))
}

// SceneFromGLTF converts the triangle primitives of every mesh in doc.
// Each vertex gets its own UV and normal slot so a face uses the same index
// for all three arrays.
func SceneFromGLTF(doc *gltf.Document, name string) (*Scene, error) {
	scene := NewScene(name)

	for _, m := range doc.Meshes {
		if err := processMesh(doc, m, scene); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	if err := scene.Validate(); err != nil {
		return nil, err
	}
	scene.CalculateBounds()

	return scene, nil
}

// processMesh extracts geometry from a GLTF mesh.
func processMesh(doc *gltf.Document, m *gltf.Mesh, scene *Scene) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		base := len(scene.Vertices)

		for i := range positions {
			scene.Vertices = append(scene.Vertices, positions[i])

			var n math3d.Vec3
			if i < len(normals) {
				n = normals[i]
			}
			scene.Normals = append(scene.Normals, n)

			var uv math3d.Vec2
			if i < len(uvs) {
				// GLTF uses top-left origin (V=0 at top). Store it bottom-left
				// like OBJ so the renderer's V flip lands on the right texel.
				uv = uvs[i].FlipV()
			}
			scene.UVs = append(scene.UVs, uv)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			idx := [3]int{base + indices[i], base + indices[i+1], base + indices[i+2]}
			scene.Faces = append(scene.Faces, Face{V: idx, UV: idx, N: idx})
		}
	}

	return nil
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d", ErrIndexOutOfRange, accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("%w: expected VEC3, got %v", ErrMalformed, accessor.Type)
	}

	floats, err := readFloatAccessor(doc, accessor, 3)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(f[0], f[1], f[2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d", ErrIndexOutOfRange, accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("%w: expected VEC2, got %v", ErrMalformed, accessor.Type)
	}

	floats, err := readFloatAccessor(doc, accessor, 2)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec2, len(floats))
	for i, f := range floats {
		result[i] = math3d.V2(f[0], f[1])
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d", ErrIndexOutOfRange, accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("%w: expected SCALAR indices, got %v", ErrMalformed, accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("%w: unexpected index type %v", ErrMalformed, accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		b := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

// readFloatAccessor reads n float32 components per element.
func readFloatAccessor(doc *gltf.Document, accessor *gltf.Accessor, n int) ([][3]float64, error) {
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("%w: expected float components, got %v", ErrMalformed, accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, n*4)
	if err != nil {
		return nil, err
	}

	result := make([][3]float64, accessor.Count)
	for i := range accessor.Count {
		offset := i * stride
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[offset+j*4:])
			result[i][j] = float64(math.Float32frombits(bits))
		}
	}
	return result, nil
}

// accessorBytes returns the accessor's bytes starting at its first element,
// plus the element stride. Only embedded (GLB) buffers are supported.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("%w: accessor has no buffer view", ErrMalformed)
	}
	if *accessor.BufferView < 0 || *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("%w: buffer view %d", ErrIndexOutOfRange, *accessor.BufferView)
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer < 0 || bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("%w: buffer %d", ErrIndexOutOfRange, bufferView.Buffer)
	}
	buffer := doc.Buffers[bufferView.Buffer]

	if buffer.URI != "" && buffer.Data == nil {
		return nil, 0, fmt.Errorf("external buffers not supported")
	}
	if buffer.Data == nil {
		return nil, 0, fmt.Errorf("%w: buffer has no data", ErrMalformed)
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	if accessor.Count == 0 {
		return nil, stride, nil
	}
	end := start + (accessor.Count-1)*stride + elemSize
	if start < 0 || end > len(buffer.Data) {
		return nil, 0, fmt.Errorf("%w: accessor reads bytes [%d, %d) of %d", ErrMalformed, start, end, len(buffer.Data))
	}
	return buffer.Data[start:end], stride, nil
}

// LoadGLTFWithTextures loads a GLTF file and extracts embedded textures.
// Returns the scene and a map of image index to encoded image data.
func LoadGLTFWithTextures(path string) (*Scene, map[int][]byte, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	scene, err := SceneFromGLTF(doc, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}

	return scene, imageData(doc, filepath.Dir(path)), nil
}

// imageData returns the encoded bytes of every image in doc that can be
// located, keyed by image index. Images stored in a missing or truncated
// buffer view are skipped; external URIs are resolved against dir.
func imageData(doc *gltf.Document, dir string) map[int][]byte {
	textures := make(map[int][]byte)
	for i, img := range doc.Images {
		if img.BufferView != nil {
			if *img.BufferView < 0 || *img.BufferView >= len(doc.BufferViews) {
				continue
			}
			bv := doc.BufferViews[*img.BufferView]
			if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
				continue
			}
			buf := doc.Buffers[bv.Buffer]
			start := bv.ByteOffset
			end := start + bv.ByteLength
			if buf.Data != nil && start >= 0 && end <= len(buf.Data) {
				textures[i] = buf.Data[start:end]
			}
		} else if img.URI != "" {
			// External texture file
			data, err := os.ReadFile(filepath.Join(dir, img.URI))
			if err == nil {
				textures[i] = data
			}
		}
	}
	return textures
}

// LoadGLBWithTexture loads a GLB file and returns the scene plus the first
// decodable embedded texture, which may be nil.
func LoadGLBWithTexture(path string) (*Scene, image.Image, error) {
	scene, textures, err := LoadGLTFWithTextures(path)
	if err != nil {
		return nil, nil, err
	}
	return scene, firstImage(textures), nil
}

// firstImage decodes images in index order and returns the first that
// succeeds, or nil.
func firstImage(textures map[int][]byte) image.Image {
	for _, i := range slices.Sorted(maps.Keys(textures)) {
		data := textures[i]
		if len(data) == 0 {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err == nil {
			return img
		}
	}
	return nil
}
