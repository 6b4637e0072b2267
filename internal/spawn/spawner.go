package spawn

import "context"

// Spawner exposes exactly the two operations the match engine needs from
// process supervision: spawn an agent and kill it. Which underlying
// Starter runs is decided per-agent by that agent's manifest.
type Spawner struct {
	native    Starter
	container Starter
}

// NewSpawner builds a Spawner. A nil native or container Starter falls
// back to NativeStarter / ContainerStarter respectively — tests pass a
// fake for one or both.
func NewSpawner(native, container Starter) *Spawner {
	if native == nil {
		native = NativeStarter
	}
	if container == nil {
		container = ContainerStarter
	}
	return &Spawner{native: native, container: container}
}

// Spawn reads the agent's manifest and dispatches to the native or
// container starter accordingly.
func (s *Spawner) Spawn(ctx context.Context, path, id string) (Process, error) {
	m, err := readManifest(path)
	if err != nil {
		return nil, err
	}
	if m.AgentChannel == ChannelHTTP {
		return s.container(ctx, path, id)
	}
	return s.native(ctx, path, id)
}
