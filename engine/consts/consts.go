package consts

import "time"

// Protocol Limits
//
// These are soft ceilings enforced at creation time so a corrupt or hostile
// stream can not grow the session tables without bound.
const (
	// MAX_SCENE_ID is the highest stream-assigned scene ID accepted
	MAX_SCENE_ID = 100
	// MAX_NODE_ID is the highest stream-assigned node ID accepted
	MAX_NODE_ID = 10000
	// MAX_MEDIA_ID is the highest stream-assigned ID accepted for materials,
	// textures, models, sounds and collide-models
	MAX_MEDIA_ID = 999

	// MAX_ATTR_ARRAY_COUNT is the largest element count accepted for any
	// attribute array command
	MAX_ATTR_ARRAY_COUNT = 1000
	// MAX_BASE_TIME_STEP is the largest single time-step accepted (milliseconds)
	MAX_BASE_TIME_STEP = 10000
	// MAX_NODE_MESSAGE_SIZE is the largest opaque node message payload accepted
	MAX_NODE_MESSAGE_SIZE = 10000
	// MAX_MATERIAL_COMPONENT_SIZE is the largest serialized material component accepted
	MAX_MATERIAL_COMPONENT_SIZE = 10000
)

// Replay File Format
const (
	// REPLAY_FILE_ID identifies a scenecast recording file
	REPLAY_FILE_ID = 0x53435250 // "SCRP"
	// REPLAY_PROTOCOL_VERSION is the protocol version written to new recordings
	REPLAY_PROTOCOL_VERSION = 2
	// REPLAY_PROTOCOL_VERSION_MIN is the oldest protocol version still playable
	REPLAY_PROTOCOL_VERSION_MIN = 1
)

// Tunable Options
const (
	// PLAYBACK_TICK_INTERVAL is the tick interval driving session updates
	PLAYBACK_TICK_INTERVAL = time.Millisecond * 10
	// SESSION_MESSAGE_QUEUE_SIZE is the max queued raw messages for live sessions
	SESSION_MESSAGE_QUEUE_SIZE = 10000
	// MIN_DATA_SIZE_TO_COMPRESS is the smallest record worth compressing
	MIN_DATA_SIZE_TO_COMPRESS = 1024
)

// Debug Options
const (
	// DEBUG_COMMANDS verifies the read cursor against the buffer length after
	// every executed command
	DEBUG_COMMANDS = true
	// DEBUG_QUEUES prints command queue debug logs
	DEBUG_QUEUES = false
)
