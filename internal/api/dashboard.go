package api

import (
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"liftlab/pkg/aero"
	"liftlab/pkg/engine"
)

// Lift-curve sampling grid (m/s).
const (
	curveVelocityMax  = 650.0
	curveVelocityStep = 50.0
)

// DashboardHandler serves the lift-vs-speed curve, as JSON for the SPA
// chart and as a server-rendered PNG.
type DashboardHandler struct {
	sim Simulation
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(sim Simulation) *DashboardHandler {
	return &DashboardHandler{sim: sim}
}

// CurvePoint is one sample of the lift curve.
type CurvePoint struct {
	Velocity  float64 `json:"velocity"`
	LiftForce float64 `json:"liftForce"`
}

// CurveResponse is the JSON lift curve plus the reference values the chart
// draws alongside it.
type CurveResponse struct {
	Points          []CurvePoint `json:"points"`
	WeightForce     float64      `json:"weightForce"`
	CurrentVelocity float64      `json:"currentVelocity"`
	LiftoffSpeed    float64      `json:"liftoffSpeed"`
}

// HandleCurve returns the curve as JSON. GET /api/dashboard/liftcurve
func (h *DashboardHandler) HandleCurve(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sim.GetState(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "simulation unavailable")
		return
	}
	writeJSON(w, http.StatusOK, buildCurve(snap))
}

// HandleCurvePNG renders the curve server-side.
// GET /api/dashboard/liftcurve.png
func (h *DashboardHandler) HandleCurvePNG(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sim.GetState(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "simulation unavailable")
		return
	}

	p, err := liftCurvePlot(snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := wt.WriteTo(w); err != nil {
		// Client went away mid-write; nothing to recover.
		return
	}
}

// buildCurve samples lift force over the velocity grid with the rest of
// the aircraft parameters frozen at their snapshot values.
func buildCurve(snap engine.Snapshot) CurveResponse {
	in := snap.State.AeroInputs(snap.AirDensity)

	points := make([]CurvePoint, 0, int(curveVelocityMax/curveVelocityStep)+1)
	for v := 0.0; v <= curveVelocityMax; v += curveVelocityStep {
		in.Velocity = v
		res := aero.Compute(in)
		points = append(points, CurvePoint{Velocity: v, LiftForce: res.LiftForce})
	}

	return CurveResponse{
		Points:          points,
		WeightForce:     snap.Results.WeightForce,
		CurrentVelocity: snap.State.Velocity,
		LiftoffSpeed:    math.Max(snap.Results.RequiredTakeoffSpeed, 0),
	}
}

// liftCurvePlot builds the gonum plot: the lift curve with the weight
// force as a horizontal reference line.
func liftCurvePlot(snap engine.Snapshot) (*plot.Plot, error) {
	curve := buildCurve(snap)

	pts := make(plotter.XYs, len(curve.Points))
	weight := make(plotter.XYs, len(curve.Points))
	for i, cp := range curve.Points {
		pts[i].X = cp.Velocity
		pts[i].Y = cp.LiftForce
		weight[i].X = cp.Velocity
		weight[i].Y = curve.WeightForce
	}

	p := plot.New()
	p.Title.Text = "Lift vs Velocity"
	p.X.Label.Text = "Velocity (m/s)"
	p.Y.Label.Text = "Force (N)"

	if err := plotutil.AddLinePoints(p, "Lift", pts, "Weight", weight); err != nil {
		return nil, err
	}
	return p, nil
}

// WriteLiftCurvePNG renders the chart to a temp file and returns its path.
// Used by the chart-grounded analysis; callers remove the file when done.
// Unique names avoid clashes between concurrent requests.
func WriteLiftCurvePNG(snap engine.Snapshot) (string, error) {
	p, err := liftCurvePlot(snap)
	if err != nil {
		return "", err
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("liftlab_curve_%d.png", time.Now().UnixNano()))
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", err
	}
	return path, nil
}
