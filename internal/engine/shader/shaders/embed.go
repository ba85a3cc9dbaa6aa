// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader transforms the mesh and evaluates per-vertex Phong
// lighting unless colors come precomputed.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader outputs the interpolated vertex color.
//
//go:embed mesh.frag
var MeshFragmentShader string
