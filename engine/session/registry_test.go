package session

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/consts"
	"github.com/scenecast/scenecast/engine/scene"
)

func TestRegistryPutGetRemove(t *testing.T) {
	r := NewRegistry()
	sc := scene.New(0)
	assert.Equal(t, nil, r.scenes.put(2, sc))

	got, err := r.GetScene(2)
	assert.Equal(t, nil, err)
	assert.Equal(t, sc, got)

	// in-range-but-empty and out-of-range are different failures
	_, err = r.GetScene(1)
	assert.Equal(t, ErrEmptySlot, errors.Cause(err))
	_, err = r.GetScene(50)
	assert.Equal(t, ErrIDOutOfRange, errors.Cause(err))
	_, err = r.GetScene(-1)
	assert.Equal(t, ErrIDOutOfRange, errors.Cause(err))

	assert.Equal(t, nil, r.scenes.remove(2))
	_, err = r.GetScene(2)
	assert.Equal(t, ErrEmptySlot, errors.Cause(err))

	err = r.scenes.remove(2)
	assert.Equal(t, ErrEmptySlot, errors.Cause(err))
}

func TestRegistryDoublePut(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, nil, r.scenes.put(0, scene.New(0)))
	err := r.scenes.put(0, scene.New(0))
	assert.Equal(t, ErrSlotOccupied, errors.Cause(err))

	// remove frees the slot for reuse
	assert.Equal(t, nil, r.scenes.remove(0))
	assert.Equal(t, nil, r.scenes.put(0, scene.New(0)))
}

func TestRegistryIDCeilings(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, nil, r.scenes.put(consts.MAX_SCENE_ID, scene.New(0)))
	err := r.scenes.put(consts.MAX_SCENE_ID+1, scene.New(0))
	assert.Equal(t, ErrIDTooLarge, errors.Cause(err))

	nt := scene.RegisterNodeType("test_registry_node")
	sc := scene.New(0)
	assert.Equal(t, nil, r.nodes.put(consts.MAX_NODE_ID, sc.NewNode(nt)))
	err = r.nodes.put(consts.MAX_NODE_ID+1, sc.NewNode(nt))
	assert.Equal(t, ErrIDTooLarge, errors.Cause(err))

	err = r.textures.put(consts.MAX_MEDIA_ID+1, &scene.Texture{})
	assert.Equal(t, ErrIDTooLarge, errors.Cause(err))
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, nil, r.scenes.put(1, scene.New(0)))
	assert.Equal(t, nil, r.textures.put(3, &scene.Texture{Name: "tex"}))
	r.Clear()
	_, err := r.GetScene(1)
	assert.Equal(t, ErrIDOutOfRange, errors.Cause(err))
	_, err = r.GetTexture(3)
	assert.Equal(t, ErrIDOutOfRange, errors.Cause(err))
}

func TestRegistryForEachOrder(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, nil, r.sounds.put(5, &scene.Sound{Name: "b"}))
	assert.Equal(t, nil, r.sounds.put(2, &scene.Sound{Name: "a"}))
	var ids []int
	r.ForEachSound(func(id int, s *scene.Sound) { ids = append(ids, id) })
	assert.Equal(t, []int{2, 5}, ids)
}
