// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// WorldVertexShader is the vertex shader for the streamed world mesh.
//
//go:embed world.vert
var WorldVertexShader string

// WorldFragmentShader shades world faces by material and samples the
// shadow cascades.
//
//go:embed world.frag
var WorldFragmentShader string

// DepthVertexShader is the vertex shader for the shadow caster mesh.
//
//go:embed depth.vert
var DepthVertexShader string

// DepthFragmentShader is the empty fragment stage of the depth pass.
//
//go:embed depth.frag
var DepthFragmentShader string
