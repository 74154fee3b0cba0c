package session

// Command is the one-byte opcode beginning every command buffer. The set is
// closed and versioned: an opcode outside the table is fatal to the session.
type Command byte

const (
	// CmdBaseTimeStep advances executed session time by an int32 step
	CmdBaseTimeStep Command = 0x01
	// CmdDynamicsCorrection applies an out-of-band physics state blob
	CmdDynamicsCorrection Command = 0x02
	// CmdEndOfStream marks source exhaustion; triggers a full reset
	CmdEndOfStream Command = 0x03

	CmdAddScene            Command = 0x04
	CmdRemoveScene         Command = 0x05
	CmdStepScene           Command = 0x06
	CmdSetForegroundScene  Command = 0x07
	CmdAddNode             Command = 0x08
	CmdNodeOnCreate        Command = 0x09
	CmdRemoveNode          Command = 0x0a
	CmdNodeMessage         Command = 0x0b
	CmdConnectNodeAttr     Command = 0x0c
	CmdSetNodeAttrFloat    Command = 0x0d
	CmdSetNodeAttrInt32    Command = 0x0e
	CmdSetNodeAttrBool     Command = 0x0f
	CmdSetNodeAttrFloats   Command = 0x10
	CmdSetNodeAttrInt32s   Command = 0x11
	CmdSetNodeAttrString   Command = 0x12
	CmdSetNodeAttrNode     Command = 0x13
	CmdSetNodeAttrNodeNull Command = 0x14
	CmdSetNodeAttrNodes    Command = 0x15

	CmdSetNodeAttrTexture          Command = 0x16
	CmdSetNodeAttrTextureNull      Command = 0x17
	CmdSetNodeAttrTextures         Command = 0x18
	CmdSetNodeAttrSound            Command = 0x19
	CmdSetNodeAttrSoundNull        Command = 0x1a
	CmdSetNodeAttrSounds           Command = 0x1b
	CmdSetNodeAttrModel            Command = 0x1c
	CmdSetNodeAttrModelNull        Command = 0x1d
	CmdSetNodeAttrModels           Command = 0x1e
	CmdSetNodeAttrCollideModel     Command = 0x1f
	CmdSetNodeAttrCollideModelNull Command = 0x20
	CmdSetNodeAttrCollideModels    Command = 0x21
	CmdSetNodeAttrMaterials        Command = 0x22

	CmdAddMaterial          Command = 0x23
	CmdRemoveMaterial       Command = 0x24
	CmdAddMaterialComponent Command = 0x25
	CmdAddTexture           Command = 0x26
	CmdRemoveTexture        Command = 0x27
	CmdAddModel             Command = 0x28
	CmdRemoveModel          Command = 0x29
	CmdAddSound             Command = 0x2a
	CmdRemoveSound          Command = 0x2b
	CmdAddCollideModel      Command = 0x2c
	CmdRemoveCollideModel   Command = 0x2d

	CmdPlaySound           Command = 0x2e
	CmdPlaySoundAtPosition Command = 0x2f
	CmdScreenMessageBottom Command = 0x30
	CmdScreenMessageTop    Command = 0x31
	CmdEmitBGDynamics      Command = 0x32
)

var commandNames = map[Command]string{
	CmdBaseTimeStep:                "base-time-step",
	CmdDynamicsCorrection:          "dynamics-correction",
	CmdEndOfStream:                 "end-of-stream",
	CmdAddScene:                    "add-scene",
	CmdRemoveScene:                 "remove-scene",
	CmdStepScene:                   "step-scene",
	CmdSetForegroundScene:          "set-foreground-scene",
	CmdAddNode:                     "add-node",
	CmdNodeOnCreate:                "node-on-create",
	CmdRemoveNode:                  "remove-node",
	CmdNodeMessage:                 "node-message",
	CmdConnectNodeAttr:             "connect-node-attr",
	CmdSetNodeAttrFloat:            "set-node-attr-float",
	CmdSetNodeAttrInt32:            "set-node-attr-int32",
	CmdSetNodeAttrBool:             "set-node-attr-bool",
	CmdSetNodeAttrFloats:           "set-node-attr-floats",
	CmdSetNodeAttrInt32s:           "set-node-attr-int32s",
	CmdSetNodeAttrString:           "set-node-attr-string",
	CmdSetNodeAttrNode:             "set-node-attr-node",
	CmdSetNodeAttrNodeNull:         "set-node-attr-node-null",
	CmdSetNodeAttrNodes:            "set-node-attr-nodes",
	CmdSetNodeAttrTexture:          "set-node-attr-texture",
	CmdSetNodeAttrTextureNull:      "set-node-attr-texture-null",
	CmdSetNodeAttrTextures:         "set-node-attr-textures",
	CmdSetNodeAttrSound:            "set-node-attr-sound",
	CmdSetNodeAttrSoundNull:        "set-node-attr-sound-null",
	CmdSetNodeAttrSounds:           "set-node-attr-sounds",
	CmdSetNodeAttrModel:            "set-node-attr-model",
	CmdSetNodeAttrModelNull:        "set-node-attr-model-null",
	CmdSetNodeAttrModels:           "set-node-attr-models",
	CmdSetNodeAttrCollideModel:     "set-node-attr-collide-model",
	CmdSetNodeAttrCollideModelNull: "set-node-attr-collide-model-null",
	CmdSetNodeAttrCollideModels:    "set-node-attr-collide-models",
	CmdSetNodeAttrMaterials:        "set-node-attr-materials",
	CmdAddMaterial:                 "add-material",
	CmdRemoveMaterial:              "remove-material",
	CmdAddMaterialComponent:        "add-material-component",
	CmdAddTexture:                  "add-texture",
	CmdRemoveTexture:               "remove-texture",
	CmdAddModel:                    "add-model",
	CmdRemoveModel:                 "remove-model",
	CmdAddSound:                    "add-sound",
	CmdRemoveSound:                 "remove-sound",
	CmdAddCollideModel:             "add-collide-model",
	CmdRemoveCollideModel:          "remove-collide-model",
	CmdPlaySound:                   "play-sound",
	CmdPlaySoundAtPosition:         "play-sound-at-position",
	CmdScreenMessageBottom:         "screen-message-bottom",
	CmdScreenMessageTop:            "screen-message-top",
	CmdEmitBGDynamics:              "emit-bg-dynamics",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}
