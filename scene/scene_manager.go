package scene

// FrameFunc is invoked at the start of each frame.
type FrameFunc func(sm *SceneManager, frame uint64)

// SceneManager is the render scheduling component of a scene root. A
// subtree whose root has no SceneManager is not part of a live scene.
type SceneManager struct {
	BaseComponent
	frame      uint64
	frameBegin Signal[FrameFunc]
	frameEnd   Signal[FrameFunc]
}

func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

func (sm *SceneManager) TargetAdded(target *Node) error {
	if target.Parent() != nil {
		return ErrNotRoot
	}
	if HasComponentOf[*SceneManager](target) {
		return ErrDuplicateScene
	}
	return sm.BaseComponent.TargetAdded(target)
}

// Frame returns the number of completed frames.
func (sm *SceneManager) Frame() uint64 {
	return sm.frame
}

// NextFrame runs one render tick.
func (sm *SceneManager) NextFrame() {
	sm.frameBegin.Emit(func(fn FrameFunc) { fn(sm, sm.frame) })
	sm.frameEnd.Emit(func(fn FrameFunc) { fn(sm, sm.frame) })
	sm.frame++
}

func (sm *SceneManager) OnFrameBegin(fn FrameFunc) Cancel {
	return sm.frameBegin.Connect(fn)
}

func (sm *SceneManager) OnFrameEnd(fn FrameFunc) Cancel {
	return sm.frameEnd.Connect(fn)
}

// SceneManagerOf returns the scene manager of the scene n belongs to.
func SceneManagerOf(n *Node) (*SceneManager, bool) {
	return ComponentOf[*SceneManager](n.Root())
}
