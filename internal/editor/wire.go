package editor

import (
	"trimap.ai/internal/lattice/grid"
	"trimap.ai/internal/lattice/mesh"
	"trimap.ai/internal/protocol"
)

// ParamsFor describes a grid config the way WELCOME reports it.
func ParamsFor(cfg grid.Config, frameRateHz int) protocol.GridParams {
	return protocol.GridParams{
		FrameRateHz:     frameRateHz,
		ChunkSize:       [2]int{cfg.ChunkSizeX, cfg.ChunkSizeZ},
		ChunkCount:      [2]int{cfg.ChunkCountX, cfg.ChunkCountZ},
		OffsetLayout:    cfg.Layout.String(),
		OuterRadius:     cfg.Metrics.OuterRadius,
		ElevationStep:   cfg.Metrics.ElevationStep,
		SlopeThresholds: [2]int{cfg.Shader.Thresholds.Low, cfg.Shader.Thresholds.High},
		MaxElevation:    cfg.Shader.MaxElevation,
	}
}

func meshMsg(g *grid.Grid, m *mesh.Mesh, frame uint64) protocol.MeshMsg {
	msg := protocol.MeshMsg{
		Type:            protocol.TypeMesh,
		ProtocolVersion: protocol.Version,
		Frame:           frame,
		Chunk:           int(m.Chunk),
		Vertices:        m.Vertices,
		Normals:         m.Normals,
		Colors:          m.Colors,
		Indices:         m.Indices,
		FlatTriangles:   m.FlatTriangles,
		CliffTriangles:  m.CliffTriangles,
	}
	if ch := g.Chunk(m.Chunk); ch != nil {
		msg.ChunkPos = [2]int{ch.X, ch.Z}
	}
	return msg
}
