// Package debugui renders Dear ImGui inspection windows for the simulators.
// Windows are ImguiItems collected by an ImguiSystem, which runs on its own
// scheduler between the backend's BeginFrame and EndFrame.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockfall/engine"
)

// ImguiItem holds a Dear ImGui render function called once per frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks whether ImGui is consuming mouse or keyboard input.
// Hosts check it before reacting to their own key bindings.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem defers every item's render function to the end of the frame and
// refreshes the input capture state.
type ImguiSystem struct {
	Items      []*ImguiItem
	InputState ImguiInputState
}

func (i *ImguiSystem) Add(render func()) *ImguiItem {
	item := &ImguiItem{Render: render}
	i.Items = append(i.Items, item)
	return item
}

func (i *ImguiSystem) Execute(frame *engine.UpdateFrame) {
	i.InputState.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
	i.InputState.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()

	for _, item := range i.Items {
		frame.Commands.Defer(item.Render)
	}
}
