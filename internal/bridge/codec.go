package bridge

import (
	"bytes"
	"encoding/json"

	"vidhub/internal/errors"
	"vidhub/pkg/types"
)

// Envelope is one line on the wire
type Envelope struct {
	Name    string          `json:"name"`
	Gen     uint64          `json:"gen,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type folderPayload struct {
	Path *string `json:"path"`
}

type progressPayload struct {
	Done  *int `json:"done"`
	Total *int `json:"total"`
}

type finalPayload struct {
	InputDir  *string              `json:"inputDir"`
	OutputDir *string              `json:"outputDir"`
	Images    *[]types.ResultEntry `json:"images"`
}

func violation(name, msg string, err error) *errors.BridgeError {
	return errors.NewBridgeError(msg, name, errors.ContractViolation, err)
}

// EncodeCommand renders a command as one JSON line
func EncodeCommand(cmd Command) ([]byte, error) {
	if !IsCommand(cmd.Name) {
		return nil, errors.NewBridgeError("unknown command", cmd.Name, errors.UnknownMessage, nil)
	}
	env := Envelope{Name: Canonical(cmd.Name), Gen: cmd.Gen}
	if cmd.Payload != (CommandPayload{}) {
		raw, err := json.Marshal(cmd.Payload)
		if err != nil {
			return nil, errors.NewBridgeError("failed to encode payload", cmd.Name, errors.TransportFailed, err)
		}
		env.Payload = raw
	}
	return marshalLine(env)
}

// DecodeCommand parses one line written by EncodeCommand
func DecodeCommand(line []byte) (Command, error) {
	env, err := decodeEnvelope(line)
	if err != nil {
		return Command{}, err
	}
	name := Canonical(env.Name)
	if !IsCommand(name) {
		return Command{}, errors.NewBridgeError("unknown command", env.Name, errors.UnknownMessage, nil)
	}
	cmd := Command{Name: name, Gen: env.Gen}
	if len(env.Payload) > 0 && !isNull(env.Payload) {
		if err := json.Unmarshal(env.Payload, &cmd.Payload); err != nil {
			// a bare string is accepted as the path argument
			var path string
			if json.Unmarshal(env.Payload, &path) != nil {
				return Command{}, violation(name, "malformed command payload", err)
			}
			cmd.Payload.Path = path
		}
	}
	if name == OpenExternalFile && cmd.Payload.Path == "" {
		return Command{}, violation(name, "missing path", nil)
	}
	return cmd, nil
}

// EncodeEvent renders an inbound event as one JSON line. It is used by the
// worker side of the bridge.
func EncodeEvent(ev Event) ([]byte, error) {
	env := Envelope{Name: ev.Name(), Gen: ev.Generation()}
	var payload interface{}
	switch e := ev.(type) {
	case InputFolderChosen:
		payload = map[string]string{"path": e.Path}
	case OutputFolderChosen:
		payload = map[string]string{"path": e.Path}
	case ProcessingProgress:
		payload = map[string]int{"done": e.Done, "total": e.Total}
	case FinalObjectReady:
		images := e.Object.Images
		if images == nil {
			images = []types.ResultEntry{}
		}
		payload = types.FinalObject{InputDir: e.Object.InputDir, OutputDir: e.Object.OutputDir, Images: images}
	default:
		return nil, errors.NewBridgeError("event cannot be sent", ev.Name(), errors.UnknownMessage, nil)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewBridgeError("failed to encode payload", ev.Name(), errors.TransportFailed, err)
	}
	env.Payload = raw
	return marshalLine(env)
}

// DecodeEvent parses and validates one inbound line. Malformed payloads and
// missing fields are ContractViolation errors; unknown names are
// UnknownMessage errors.
func DecodeEvent(line []byte) (Event, error) {
	env, err := decodeEnvelope(line)
	if err != nil {
		return nil, err
	}
	name := Canonical(env.Name)
	meta := Meta{Gen: env.Gen}

	switch name {
	case InputFolderChosenName, OutputFolderChosenName:
		path, err := decodePath(name, env.Payload)
		if err != nil {
			return nil, err
		}
		if name == InputFolderChosenName {
			return InputFolderChosen{Meta: meta, Path: path}, nil
		}
		return OutputFolderChosen{Meta: meta, Path: path}, nil

	case ProcessingProgressName:
		done, total, err := decodeProgress(env.Payload)
		if err != nil {
			return nil, err
		}
		return ProcessingProgress{Meta: meta, Done: done, Total: total}, nil

	case FinalObjectReadyName:
		var p finalPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, violation(name, "malformed final object", err)
		}
		if p.InputDir == nil || p.OutputDir == nil || p.Images == nil {
			return nil, violation(name, "final object is missing fields", nil)
		}
		return FinalObjectReady{Meta: meta, Object: types.FinalObject{
			InputDir:  *p.InputDir,
			OutputDir: *p.OutputDir,
			Images:    *p.Images,
		}}, nil
	}

	return nil, errors.NewBridgeError("unknown event", env.Name, errors.UnknownMessage, nil)
}

func decodePath(name string, payload json.RawMessage) (string, error) {
	if len(payload) == 0 {
		return "", violation(name, "missing payload", nil)
	}
	var p folderPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		var bare string
		if json.Unmarshal(payload, &bare) != nil {
			return "", violation(name, "malformed folder payload", err)
		}
		p.Path = &bare
	}
	if p.Path == nil || *p.Path == "" {
		return "", violation(name, "missing path", nil)
	}
	return *p.Path, nil
}

func decodeProgress(payload json.RawMessage) (done, total int, err error) {
	if len(payload) == 0 {
		return 0, 0, violation(ProcessingProgressName, "missing payload", nil)
	}
	// older workers send [done, total]
	if bytes.HasPrefix(bytes.TrimSpace(payload), []byte("[")) {
		var pair []int
		if err := json.Unmarshal(payload, &pair); err != nil || len(pair) != 2 {
			return 0, 0, violation(ProcessingProgressName, "malformed progress pair", err)
		}
		return pair[0], pair[1], nil
	}
	var p progressPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return 0, 0, violation(ProcessingProgressName, "malformed progress", err)
	}
	if p.Done == nil || p.Total == nil {
		return 0, 0, violation(ProcessingProgressName, "progress is missing fields", nil)
	}
	return *p.Done, *p.Total, nil
}

func decodeEnvelope(line []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Envelope{}, violation("", "malformed envelope", err)
	}
	if env.Name == "" {
		return Envelope{}, violation("", "envelope has no name", nil)
	}
	return env, nil
}

func marshalLine(env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, errors.NewBridgeError("failed to encode envelope", env.Name, errors.TransportFailed, err)
	}
	return append(data, '\n'), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
