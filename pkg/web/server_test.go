package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pterm/pterm"

	"github.com/tosih/motor-curve-tool/pkg/clipboard"
	"github.com/tosih/motor-curve-tool/pkg/compare"
	"github.com/tosih/motor-curve-tool/pkg/editor"
	"github.com/tosih/motor-curve-tool/pkg/export"
	"github.com/tosih/motor-curve-tool/pkg/grid"
	"github.com/tosih/motor-curve-tool/pkg/models"
)

func testMotor() *models.Motor {
	v := &models.Voltage{Value: 48, MaxSpeed: 1000}
	axis := models.NewVoltageAxis(v.MaxSpeed, 11)
	for k, name := range []string{"Peak", "Continuous"} {
		c := models.NewCurve(name, axis)
		for r := range c.Points {
			c.Points[r].Torque = float64(k*10 + r)
		}
		v.Curves = append(v.Curves, c)
	}
	v.Curves[1].Locked = true
	return &models.Motor{Name: "M", Drives: []*models.Drive{{Name: "D", Voltages: []*models.Voltage{v}}}}
}

func newTestServer(t *testing.T) (*httptest.Server, *editor.Session) {
	t.Helper()
	sess := editor.NewSession(testMotor(), filepath.Join(t.TempDir(), "m.json"), editor.Options{
		Logger:    pterm.DefaultLogger.WithWriter(io.Discard),
		Clipboard: &clipboard.System{},
	})
	ts := httptest.NewServer(NewServer(sess, 0).Handler())
	t.Cleanup(ts.Close)
	return ts, sess
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	res, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(res.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestIndex(t *testing.T) {
	ts, _ := newTestServer(t)
	res, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), "Motor Curve Editor") {
		t.Errorf("status %d", res.StatusCode)
	}
	res, _ = http.Get(ts.URL + "/nope")
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status %d", res.StatusCode)
	}
}

func TestGrid(t *testing.T) {
	ts, _ := newTestServer(t)
	res, err := http.Get(ts.URL + "/api/grid")
	if err != nil {
		t.Fatal(err)
	}
	g := decode[GridResponse](t, res)
	if g.Drive != "D" || g.Voltage != 48 || len(g.Rows) != 11 {
		t.Fatalf("grid = %+v", g)
	}
	if diff := cmp.Diff([]string{"100", "1000", "10.00", "20.00"}, g.Rows[10]); diff != "" {
		t.Errorf("last row (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true, true, false, true}, g.ReadOnly); diff != "" {
		t.Errorf("read-only (-want +got):\n%s", diff)
	}
}

func TestSelectApplyUndo(t *testing.T) {
	ts, sess := newTestServer(t)

	res := post(t, ts, "/api/selection", `{"op":"rect","row":0,"column":2,"toRow":1,"toColumn":3}`)
	cells := decode[[]grid.CellPosition](t, res)
	if len(cells) != 4 {
		t.Fatalf("selection = %v", cells)
	}

	res = post(t, ts, "/api/apply", `{"value":7.5}`)
	if !decode[ChangeResponse](t, res).Changed {
		t.Fatal("apply reported no change")
	}
	if sess.Voltage().Curves[0].Points[1].Torque != 7.5 {
		t.Error("value not applied")
	}

	res = post(t, ts, "/api/undo", "")
	g := decode[GridResponse](t, res)
	if g.CanUndo || !g.CanRedo || g.Rows[1][2] != "1.00" {
		t.Errorf("after undo: canUndo=%v canRedo=%v cell=%q", g.CanUndo, g.CanRedo, g.Rows[1][2])
	}
	res = post(t, ts, "/api/redo", "")
	if g := decode[GridResponse](t, res); g.Rows[1][2] != "7.50" || !g.Dirty {
		t.Errorf("after redo: cell=%q dirty=%v", g.Rows[1][2], g.Dirty)
	}
}

func TestCopyPaste(t *testing.T) {
	ts, sess := newTestServer(t)
	post(t, ts, "/api/selection", `{"op":"rect","row":1,"column":2,"toRow":2,"toColumn":2}`)

	res, err := http.Get(ts.URL + "/api/copy")
	if err != nil {
		t.Fatal(err)
	}
	text, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if string(text) != "1.00\n2.00" {
		t.Errorf("copy = %q", text)
	}

	post(t, ts, "/api/selection", `{"op":"cell","row":8,"column":2}`)
	res = post(t, ts, "/api/paste", string(text))
	if !decode[ChangeResponse](t, res).Changed {
		t.Fatal("paste reported no change")
	}
	peak := sess.Voltage().Curves[0]
	if peak.Points[8].Torque != 1 || peak.Points[9].Torque != 2 {
		t.Errorf("pasted %v, %v", peak.Points[8].Torque, peak.Points[9].Torque)
	}

	post(t, ts, "/api/selection", `{"op":"cell","row":10,"column":2}`)
	if res := post(t, ts, "/api/paste", "1\n2"); res.StatusCode != http.StatusBadRequest {
		t.Errorf("misfit paste status %d", res.StatusCode)
	}
}

func TestBadRequests(t *testing.T) {
	ts, _ := newTestServer(t)
	tests := []struct {
		path, body string
	}{
		{"/api/selection", `{"op":"explode"}`},
		{"/api/selection", `not json`},
		{"/api/apply", `{"value":1}`},
		{"/api/voltage", `{"drive":3,"voltage":0}`},
	}
	for _, tt := range tests {
		if res := post(t, ts, tt.path, tt.body); res.StatusCode != http.StatusBadRequest {
			t.Errorf("POST %s %s: status %d", tt.path, tt.body, res.StatusCode)
		}
	}
}

func TestSelectionClampedToGrid(t *testing.T) {
	ts, _ := newTestServer(t)
	res := post(t, ts, "/api/selection", `{"op":"rect","row":0,"column":0,"toRow":100000000,"toColumn":100000000}`)
	if cells := decode[[]grid.CellPosition](t, res); len(cells) != 11*4 {
		t.Errorf("selected %d cells, want the whole 11x4 grid", len(cells))
	}
}

func TestSaveAndCompare(t *testing.T) {
	ts, sess := newTestServer(t)
	other := filepath.Join(filepath.Dir(sess.Path), "other.json")
	m := testMotor()
	m.Drives[0].Voltages[0].Curves[0].Points[3].Torque = 30
	if err := export.WriteMotor(other, m); err != nil {
		t.Fatal(err)
	}

	res, err := http.Get(ts.URL + "/api/compare?file=" + url.QueryEscape(other))
	if err != nil {
		t.Fatal(err)
	}
	got := decode[compare.Result](t, res)
	if len(got.Curves) != 2 || got.Curves[0].Changed != 1 || got.Curves[0].MaxIncrease != 27 {
		t.Errorf("compare = %+v", got)
	}

	if res := post(t, ts, "/api/save", ""); res.StatusCode != http.StatusOK {
		t.Fatalf("save status %d", res.StatusCode)
	}
	if _, err := os.Stat(sess.Path); err != nil {
		t.Error(err)
	}
}

func TestScan(t *testing.T) {
	ts, sess := newTestServer(t)
	sess.Voltage().Curves[0].Points[2].Torque = -1
	res, err := http.Get(ts.URL + "/api/scan")
	if err != nil {
		t.Fatal(err)
	}
	got := decode[[]FindingResponse](t, res)
	if len(got) != 1 || got[0].Percent != 20 || got[0].Curve != "Peak" {
		t.Errorf("findings = %+v", got)
	}
}

func TestConcurrentEdits(t *testing.T) {
	ts, sess := newTestServer(t)
	post(t, ts, "/api/selection", `{"op":"cell","row":5,"column":2}`)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := http.Post(ts.URL+"/api/scale", "application/json", strings.NewReader(`{"value":1.1}`))
			if err == nil {
				res.Body.Close()
			}
		}()
	}
	wg.Wait()
	if depth := sess.Stack.UndoDepth(); depth != 20 {
		t.Errorf("undo depth = %d, want 20", depth)
	}
}

func TestBrowserCommand(t *testing.T) {
	if browserCommand("plan9", "http://x") != nil {
		t.Error("unexpected command for unknown OS")
	}
	if cmd := browserCommand("linux", "http://x"); cmd == nil || cmd.Args[len(cmd.Args)-1] != "http://x" {
		t.Errorf("linux command = %v", cmd)
	}
}
