package reader

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/octocull/asset"
	"github.com/achilleasa/octocull/asset/input"
	"github.com/achilleasa/octocull/log"
	"github.com/achilleasa/octocull/types"
	"github.com/pkg/errors"
)

type wavefrontSceneReader struct {
	logger log.Logger

	// The parsed scene.
	rawScene *input.Scene

	// Global vertex list.
	vertexList []types.Vec3

	// Maps global vertex indices to indices in the vertex list of the
	// mesh being parsed.
	meshVertexIndex map[int]uint32

	// Instances that are defined before the mesh they reference has been
	// fully parsed are resolved once parsing completes.
	pendingInstances []pendingInstance

	// An error stack that provides additional error information when
	// scene files include other files.
	errStack []string
}

type pendingInstance struct {
	meshName string
	inst     *input.MeshInstance
}

// Create a new text scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:     log.New("wavefront scene reader"),
		rawScene:   input.NewScene(),
		vertexList: make([]types.Vec3, 0),
		errStack:   make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*input.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	// Parse scene
	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	if err = r.resolveInstances(); err != nil {
		return nil, err
	}

	// If no mesh instances are defined, create instances for each defined mesh
	if len(r.rawScene.MeshInstances) == 0 {
		r.createDefaultMeshInstances()
	}

	for meshName := range r.rawScene.IgnoreCulling {
		if _, exists := r.rawScene.MeshIndex(meshName); !exists {
			r.logger.Warningf(`"cull_ignore" references unknown mesh "%s"`, meshName)
		}
	}

	r.logger.Noticef(
		"parsed scene in %d ms: %d meshes, %d instances, %d triangles",
		time.Since(start).Nanoseconds()/1e6, len(r.rawScene.Meshes), len(r.rawScene.MeshInstances), r.rawScene.TriangleCount(),
	)
	return r.rawScene, nil
}

// Generate a mesh instance with an identity transformation for each defined mesh.
func (r *wavefrontSceneReader) createDefaultMeshInstances() {
	for meshIndex, mesh := range r.rawScene.Meshes {
		inst := &input.MeshInstance{
			Name:      mesh.Name,
			MeshIndex: uint32(meshIndex),
			Transform: types.Ident4(),
		}
		inst.SetBBox(mesh.BBox())
		r.rawScene.MeshInstances = append(r.rawScene.MeshInstances, inst)
	}
}

// Resolve mesh references for parsed instances and calculate their AABBs.
func (r *wavefrontSceneReader) resolveInstances() error {
	instanceCount := make(map[string]int)
	for _, pending := range r.pendingInstances {
		meshIndex, exists := r.rawScene.MeshIndex(pending.meshName)
		if !exists {
			return r.emitError("", 0, `unknown mesh with name "%s"`, pending.meshName)
		}

		inst := pending.inst
		inst.MeshIndex = uint32(meshIndex)
		inst.Name = fmt.Sprintf("%s#%d", pending.meshName, instanceCount[pending.meshName])
		inst.SetBBox(r.rawScene.Meshes[meshIndex].BBox().Transform(inst.Transform))
		instanceCount[pending.meshName]++

		r.rawScene.MeshInstances = append(r.rawScene.MeshInstances, inst)
	}
	r.pendingInstances = nil
	return nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return errors.New(errMsg)
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex offset we can apply it while parsing
	// faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			defer incRes.Close()

			if err = r.parse(incRes); err != nil {
				return err
			}
			r.popFrame()
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.verifyLastParsedMesh()
			r.startMesh(lineTokens[1])
		case "f":
			// If no object has been defined create a default one
			if len(r.rawScene.Meshes) == 0 {
				r.startMesh("default")
			}

			if err = r.parseFace(lineTokens, relVertexOffset); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "camera_fov":
			r.rawScene.Camera.FOV, err = parseFloat32(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "camera_eye":
			r.rawScene.Camera.Eye, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "camera_look":
			r.rawScene.Camera.Look, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "camera_up":
			r.rawScene.Camera.Up, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "instance":
			if err = r.parseMeshInstance(lineTokens); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "cull_ignore":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "cull_ignore"; expected at least 1 mesh name; got 0`)
			}
			for _, meshName := range lineTokens[1:] {
				r.rawScene.IgnoreCulling[meshName] = true
			}
		default:
			// Normals, uv coords and materials do not affect visibility.
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	r.verifyLastParsedMesh()
	return nil
}

// Append a new mesh and reset the vertex index mapping.
func (r *wavefrontSceneReader) startMesh(name string) {
	r.rawScene.Meshes = append(r.rawScene.Meshes, input.NewMesh(name))
	r.meshVertexIndex = make(map[int]uint32)
}

// Drop the last parsed mesh if it contains no primitives.
func (r *wavefrontSceneReader) verifyLastParsedMesh() {
	lastMeshIndex := len(r.rawScene.Meshes) - 1
	if lastMeshIndex >= 0 && len(r.rawScene.Meshes[lastMeshIndex].Indices) == 0 {
		r.logger.Warningf(`dropping mesh "%s" as it contains no polygons`, r.rawScene.Meshes[lastMeshIndex].Name)
		r.rawScene.Meshes = r.rawScene.Meshes[:lastMeshIndex]
	}
}

// Parse mesh instance definition. Definitions use the following format:
// instance mesh_name tX tY tZ yaw pitch roll sX sY sZ
// where:
// - tX, tY, tZ       : translation vector
// - yaw, pitch, roll : rotation angles in degrees around the X, Y and Z axis
// - sX, sY, sZ	      : scale
func (r *wavefrontSceneReader) parseMeshInstance(lineTokens []string) error {
	if len(lineTokens) != 11 {
		return fmt.Errorf(`unsupported syntax for "instance"; expected 10 arguments: mesh_name tX tY tZ yaw pitch roll sX sY sZ; got %d`, len(lineTokens)-1)
	}

	var translation, rotation, scale types.Vec3

	// Parse translation
	for index := 2; index < 5; index++ {
		v, err := strconv.ParseFloat(lineTokens[index], 32)
		if err != nil {
			return err
		}
		translation[index-2] = float32(v)
	}

	// Parse rotation angles and convert to radians
	for index := 5; index < 8; index++ {
		v, err := strconv.ParseFloat(lineTokens[index], 32)
		if err != nil {
			return err
		}
		v *= math.Pi / 180.0
		rotation[index-5] = float32(v)
	}

	// Parse scale
	for index := 8; index < 11; index++ {
		v, err := strconv.ParseFloat(lineTokens[index], 32)
		if err != nil {
			return err
		}
		scale[index-8] = float32(v)
	}

	// Generate final matrix: M = T * R * S
	rotMat := types.QuatFromEuler(rotation).Mat4()
	scaleMat := types.Scale4(scale)
	transMat := types.Translate4(translation)

	r.pendingInstances = append(r.pendingInstances, pendingInstance{
		meshName: lineTokens[1],
		inst: &input.MeshInstance{
			Transform: transMat.Mul4(rotMat.Mul4(scaleMat)),
		},
	})
	return nil
}

// Parse face definition. Each face definitions consists of 3 arguments,
// one for each vertex. Each one of the vertex arguments is comprised of
// 1, 2 or 3 args separated by a slash character. The following formats are
// supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Only the vertex index is used. Indices start from 1 and may be negative
// to indicate an offset off the end of the vertex list.
//
// This method only works with triangular/quad faces and will return an error if a
// face with more than 4 vertices is encountered.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset int) error {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return fmt.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, len(lineTokens)-1)
	}

	mesh := r.rawScene.Meshes[len(r.rawScene.Meshes)-1]

	var faceIndices [4]uint32
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}

		meshIndex, exists := r.meshVertexIndex[vOffset]
		if !exists {
			mesh.Vertices = append(mesh.Vertices, r.vertexList[vOffset])
			meshIndex = uint32(len(mesh.Vertices) - 1)
			r.meshVertexIndex[vOffset] = meshIndex
		}
		faceIndices[arg] = meshIndex
	}

	// Assemble vertices into one or two triangles depending on whether we are parsing a triangular or a quad face
	mesh.Indices = append(mesh.Indices, faceIndices[0], faceIndices[1], faceIndices[2])
	if len(lineTokens) == 5 {
		mesh.Indices = append(mesh.Indices, faceIndices[0], faceIndices[2], faceIndices[3])
	}
	mesh.MarkBBoxDirty()
	return nil
}

// Given an index for a face coord type calculate the proper offset into the
// coord list. Wavefront format can also use negative indices to reference
// elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
