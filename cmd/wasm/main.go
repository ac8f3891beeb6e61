//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/inamate/inkcanvas/internal/canvas"
	"github.com/inamate/inkcanvas/internal/engine"
)

var eng *engine.Engine

func main() {
	density := 1.0
	if dpr := js.Global().Get("devicePixelRatio"); dpr.Type() == js.TypeNumber {
		density = dpr.Float()
	}
	eng = engine.NewEngine("local", canvas.WithDensity(density))

	// Create the engine API object
	inkEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	inkEngine.Set("createStroke", js.FuncOf(createStroke))
	inkEngine.Set("appendPoint", js.FuncOf(appendPoint))
	inkEngine.Set("endStroke", js.FuncOf(endStroke))
	inkEngine.Set("setPoints", js.FuncOf(setPoints))
	inkEngine.Set("setStrokeStyle", js.FuncOf(setStrokeStyle))
	inkEngine.Set("setDefaultStyle", js.FuncOf(setDefaultStyle))
	inkEngine.Set("setHitSlop", js.FuncOf(setHitSlop))
	inkEngine.Set("save", js.FuncOf(save))
	inkEngine.Set("restore", js.FuncOf(restore))
	inkEngine.Set("clear", js.FuncOf(clearCanvas))
	inkEngine.Set("deleteStrokes", js.FuncOf(deleteStrokes))
	inkEngine.Set("undo", js.FuncOf(undo))
	inkEngine.Set("addPaths", js.FuncOf(addPaths))
	inkEngine.Set("loadSample", js.FuncOf(loadSample))
	inkEngine.Set("preCommitPoints", js.FuncOf(preCommitPoints))
	inkEngine.Set("commitAll", js.FuncOf(commitAll))
	inkEngine.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← backend) ---
	inkEngine.Set("render", js.FuncOf(render))
	inkEngine.Set("renderDirty", js.FuncOf(renderDirty))
	inkEngine.Set("hitTest", js.FuncOf(hitTest))
	inkEngine.Set("hitTestStroke", js.FuncOf(hitTestStroke))
	inkEngine.Set("getPaths", js.FuncOf(getPaths))
	inkEngine.Set("getDocument", js.FuncOf(getDocument))
	inkEngine.Set("getDepth", js.FuncOf(getDepth))
	inkEngine.Set("getDefaultStyle", js.FuncOf(getDefaultStyle))
	inkEngine.Set("isAnimating", js.FuncOf(isAnimating))

	// Register on global scope
	js.Global().Set("inkEngine", inkEngine)

	// Signal that WASM is ready
	js.Global().Set("inkWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func result(err error) interface{} {
	if err != nil {
		return fail(err.Error())
	}
	return ok()
}

func stringArg(args []js.Value, i int) string {
	if len(args) > i && args[i].Type() == js.TypeString {
		return args[i].String()
	}
	return ""
}

// --- Command Handlers ---

func createStroke(this js.Value, args []js.Value) interface{} {
	id, err := eng.CreateStroke(stringArg(args, 0))
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": id})
}

func appendPoint(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return fail("appendPoint needs id, x, y")
	}
	return result(eng.AppendPoint(args[0].String(), args[1].Float(), args[2].Float()))
}

func endStroke(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing stroke id")
	}
	return result(eng.EndStroke(args[0].String()))
}

func setPoints(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("setPoints needs id and points JSON")
	}
	return result(eng.SetPoints(args[0].String(), args[1].String()))
}

func setStrokeStyle(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("setStrokeStyle needs id and style JSON")
	}
	return result(eng.SetStrokeStyle(args[0].String(), args[1].String()))
}

func setDefaultStyle(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing style JSON")
	}
	return result(eng.SetDefaultStyle(args[0].String()))
}

func setHitSlop(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing hit slop JSON")
	}
	overrideAll := len(args) > 1 && args[1].Truthy()
	return result(eng.SetHitSlop(args[0].String(), overrideAll))
}

func save(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Save())
}

func restore(this js.Value, args []js.Value) interface{} {
	level := -1
	if len(args) > 0 && args[0].Type() == js.TypeNumber {
		level = args[0].Int()
	}
	changed, err := eng.Restore(level)
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "changed": changed})
}

func clearCanvas(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Clear())
}

func deleteStrokes(this js.Value, args []js.Value) interface{} {
	removed, err := eng.DeleteStrokes(stringArg(args, 0))
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "removed": removed})
}

func undo(this js.Value, args []js.Value) interface{} {
	id, err := eng.Undo()
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": id})
}

func addPaths(this js.Value, args []js.Value) interface{} {
	ids, err := eng.AddPaths(stringArg(args, 0))
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "ids": ids})
}

func loadSample(this js.Value, args []js.Value) interface{} {
	return result(eng.LoadSample())
}

func preCommitPoints(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("preCommitPoints needs id and points JSON")
	}
	animate := len(args) > 2 && args[2].Truthy()
	return result(eng.PreCommitPoints(args[0].String(), args[1].String(), animate))
}

func commitAll(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing stroke id")
	}
	return result(eng.CommitAll(args[0].String()))
}

func tick(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Tick())
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func renderDirty(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.RenderDirty())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func hitTestStroke(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	hit, err := eng.HitTestStroke(args[0].Float(), args[1].Float(), args[2].String())
	if err != nil {
		return js.ValueOf(false)
	}
	return js.ValueOf(hit)
}

func getPaths(this js.Value, args []js.Value) interface{} {
	includePoints := len(args) > 0 && args[0].Truthy()
	return js.ValueOf(eng.GetPaths(includePoints))
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func getDepth(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDepth())
}

func getDefaultStyle(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDefaultStyle())
}

func isAnimating(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Animating() > 0)
}
