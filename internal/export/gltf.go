// Package export writes page meshes as glTF 2.0 binaries.
//
// A skinned export keeps the joint chain as a node hierarchy with the
// current angles, so any glTF viewer reproduces the pose and can re-pose
// it. A static export bakes the pose into the vertices.
package export

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/castle-book/internal/engine/page"
)

// ErrNoMesh is returned when there is nothing to export.
var ErrNoMesh = errors.New("export: nil mesh")

// Options controls what is written.
type Options struct {
	// Name is used for the mesh and root node. Empty selects "page".
	Name string
	// Static bakes the pose into the vertices and drops the skin.
	Static bool
}

// Document builds a glTF document for m in its current pose.
func Document(m *page.Mesh, opts Options) (*gltf.Document, error) {
	if m == nil || m.Geometry == nil || m.Chain == nil {
		return nil, ErrNoMesh
	}
	name := opts.Name
	if name == "" {
		name = "page"
	}

	doc := gltf.NewDocument()
	verts := m.Geometry.Vertices
	if opts.Static {
		verts = m.Pose(nil)
	}

	positions := make([][3]float32, len(verts))
	normals := make([][3]float32, len(verts))
	uvs := make([][2]float32, len(verts))
	for i, v := range verts {
		positions[i] = v.Position
		normals[i] = v.Normal
		// glTF puts v=0 at the top of the image.
		uvs[i] = [2]float32{v.TexCoord[0], 1 - v.TexCoord[1]}
	}

	attrs := gltf.Attribute{
		gltf.POSITION:   modeler.WritePosition(doc, positions),
		gltf.NORMAL:     modeler.WriteNormal(doc, normals),
		gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
	}
	if !opts.Static {
		joints := make([][4]uint16, len(verts))
		weights := make([][4]float32, len(verts))
		for i, v := range verts {
			joints[i] = [4]uint16{v.Joints[0], v.Joints[1]}
			weights[i] = [4]float32{v.Weights[0], v.Weights[1]}
		}
		attrs[gltf.JOINTS_0] = modeler.WriteJoints(doc, joints)
		attrs[gltf.WEIGHTS_0] = modeler.WriteWeights(doc, weights)
	}

	mesh := &gltf.Mesh{Name: name}
	for _, g := range m.Geometry.Groups {
		if g.IndexCount == 0 {
			continue
		}
		indices := m.Geometry.Indices[g.StartIndex : g.StartIndex+g.IndexCount]
		mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
			Attributes: attrs,
			Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
			Material:   gltf.Index(writeMaterial(doc, g.Face, m.Materials[g.Face])),
		})
	}
	doc.Meshes = append(doc.Meshes, mesh)

	pos := m.Position
	if opts.Static {
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        name,
			Mesh:        gltf.Index(0),
			Translation: [3]float64{float64(pos.X), float64(pos.Y), float64(pos.Z)},
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
		return doc, nil
	}

	// Node 0 carries the mesh; nodes 1..n are the joints, each the child
	// of the one before.
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: name,
		Mesh: gltf.Index(0),
		Skin: gltf.Index(0),
	})
	n := m.Chain.Len()
	jointNodes := make([]uint32, n)
	inverseBind := make([][4][4]float32, n)
	var restX float32
	for j := 0; j < n; j++ {
		joint := m.Chain.Joint(j)
		restX += joint.Offset.X

		node := &gltf.Node{
			Name:     fmt.Sprintf("%s_joint%02d", name, j),
			Rotation: yRotation(m.Chain.Rotation(j)),
		}
		if j == 0 {
			node.Translation = [3]float64{float64(pos.X), float64(pos.Y), float64(pos.Z)}
		} else {
			node.Translation = [3]float64{float64(joint.Offset.X), float64(joint.Offset.Y), float64(joint.Offset.Z)}
		}
		doc.Nodes = append(doc.Nodes, node)
		jointNodes[j] = uint32(len(doc.Nodes) - 1)
		if j > 0 {
			parent := doc.Nodes[jointNodes[j-1]]
			parent.Children = append(parent.Children, jointNodes[j])
		}

		// The bind pose is the flat chain, so the inverse is a translation
		// back to the spine.
		inverseBind[j] = [4][4]float32{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
			{-restX, 0, 0, 1},
		}
	}

	doc.Skins = append(doc.Skins, &gltf.Skin{
		Name:                name + "_chain",
		InverseBindMatrices: gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, inverseBind)),
		Joints:              jointNodes,
		Skeleton:            gltf.Index(jointNodes[0]),
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0, jointNodes[0])
	return doc, nil
}

// SaveBinary writes m to path as a .glb file.
func SaveBinary(m *page.Mesh, path string, opts Options) error {
	doc, err := Document(m, opts)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

func writeMaterial(doc *gltf.Document, face page.Face, mat page.Material) uint32 {
	metallic, roughness := 0.0, 0.9
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        face.String(),
		DoubleSided: mat.DoubleSide,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{float64(mat.Color[0]), float64(mat.Color[1]), float64(mat.Color[2]), 1},
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
	})
	return uint32(len(doc.Materials) - 1)
}

// yRotation is the unit quaternion (x, y, z, w) for angle radians about +Y.
func yRotation(angle float64) [4]float64 {
	s, c := gomath.Sincos(angle / 2)
	return [4]float64{0, s, 0, c}
}
