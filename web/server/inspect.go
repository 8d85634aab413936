package server

import (
	"net/http"
	"strconv"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/procedural"
	"github.com/df07/go-procedural-raymarcher/pkg/raymarch"
	"github.com/df07/go-procedural-raymarcher/pkg/renderer"
	"github.com/df07/go-procedural-raymarcher/pkg/scene"
	"github.com/df07/go-procedural-raymarcher/pkg/shading"
)

// InspectResponse describes the pixel-centre sample of a frame
type InspectResponse struct {
	Mode      string     `json:"mode"`
	Color     [3]float32 `json:"color"`
	Hit       bool       `json:"hit"`
	Distance  float32    `json:"distance,omitempty"`
	Steps     int        `json:"steps,omitempty"`
	Point     [3]float32 `json:"point"`
	Normal    [3]float32 `json:"normal"`
	SceneID   uint32     `json:"sceneId"`
	SceneName string     `json:"sceneName,omitempty"`
	World     [2]float32 `json:"world"` // 2D modes: view-space point under the pixel
}

// InspectResult is the raw outcome of marching one pixel-centre ray
type InspectResult struct {
	March  raymarch.Result
	Point  [3]float32
	Normal [3]float32
}

// inspectPixel marches the pixel-centre ray of an SDF frame
func inspectPixel(frame *renderer.Frame, pixelX, pixelY int) InspectResult {
	uv := frame.UV(pixelX, pixelY, 0.5, 0.5)
	ray := frame.SDF.Ray(uv)
	dist := frame.Composer.Resolve(frame.SDF.SceneID)

	res := raymarch.March(ray, dist, frame.SDF.Settings())
	result := InspectResult{March: res}
	if res.Hit {
		p := ray.At(res.Distance)
		n := shading.EstimateNormal(dist, p)
		result.Point = [3]float32{p.X, p.Y, p.Z}
		result.Normal = [3]float32{n.X, n.Y, n.Z}
	}
	return result
}

func sceneName(id uint32) string {
	for _, info := range scene.Catalog {
		if info.ID == id {
			return info.Name
		}
	}
	// unknown ids render demo 0
	return scene.Catalog[scene.CarvedSphere].Name
}

// handleInspect handles pixel inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		writeJSONError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	frame, err := s.buildFrame(req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	sample := frame.Shade(pixelX, pixelY, 0.5, 0.5)
	if !sample.Color.IsFinite() {
		writeJSONError(w, http.StatusInternalServerError, "pixel sample is not finite")
		return
	}
	response := InspectResponse{
		Mode:  frame.Mode.String(),
		Color: [3]float32{sample.Color.X, sample.Color.Y, sample.Color.Z},
	}

	if frame.Mode == renderer.ModeSDF {
		result := inspectPixel(frame, pixelX, pixelY)
		response.Hit = result.March.Hit
		response.Steps = result.March.Steps
		response.SceneID = frame.SDF.SceneID
		response.SceneName = sceneName(frame.SDF.SceneID)
		if result.March.Hit {
			response.Distance = result.March.Distance
			response.Point = result.Point
			response.Normal = result.Normal
		}
	} else {
		uv := frame.UV(pixelX, pixelY, 0.5, 0.5)
		p := procedural.WorldPoint(uv, float32(req.Zoom), core.NewVec2(float32(req.PanX), float32(req.PanY)))
		response.World = [2]float32{p.X, p.Y}
	}

	writeJSON(w, http.StatusOK, response)
}
