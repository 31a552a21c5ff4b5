package protocol

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Version is the protocol version this client speaks. The server must
// report the same version in its CONNECT reply; no negotiation is attempted.
const Version int32 = 1

// MsgType is the discriminant byte at the start of every payload.
type MsgType byte

const (
	MsgConnect       MsgType = 1
	MsgDisconnect    MsgType = 2
	MsgLogin         MsgType = 3
	MsgLoginResult   MsgType = 4
	MsgAddEntity     MsgType = 5
	MsgRemoveEntity  MsgType = 6
	MsgUpdateState   MsgType = 7
	MsgAssignControl MsgType = 8
	MsgEntityDeath   MsgType = 9
	MsgCombatHit     MsgType = 10
	MsgMove          MsgType = 11
)

func (t MsgType) String() string {
	switch t {
	case MsgConnect:
		return "CONNECT"
	case MsgDisconnect:
		return "DISCONNECT"
	case MsgLogin:
		return "LOGIN"
	case MsgLoginResult:
		return "LOGINRESULT"
	case MsgAddEntity:
		return "ADDENTITY"
	case MsgRemoveEntity:
		return "REMOVEENTITY"
	case MsgUpdateState:
		return "UPDATESTATE"
	case MsgAssignControl:
		return "ASSIGNCONTROL"
	case MsgEntityDeath:
		return "ENTITYDEATH"
	case MsgCombatHit:
		return "COMBATHIT"
	case MsgMove:
		return "MOVE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", byte(t))
	}
}

// DisconnectReason is the enumerated code carried by DISCONNECT.
type DisconnectReason byte

const (
	ReasonQuit    DisconnectReason = 0
	ReasonKicked  DisconnectReason = 1
	ReasonTimeout DisconnectReason = 2
	ReasonError   DisconnectReason = 3
)

func (r DisconnectReason) String() string {
	switch r {
	case ReasonQuit:
		return "quit"
	case ReasonKicked:
		return "kicked"
	case ReasonTimeout:
		return "timeout"
	case ReasonError:
		return "error"
	default:
		return fmt.Sprintf("reason(%d)", byte(r))
	}
}

// LoginFailReason is the server-defined rejection code in LOGINRESULT.
type LoginFailReason byte

const (
	LoginNameTaken  LoginFailReason = 1
	LoginServerFull LoginFailReason = 2
	LoginBanned     LoginFailReason = 3
	LoginBadName    LoginFailReason = 4
)

func (r LoginFailReason) String() string {
	switch r {
	case LoginNameTaken:
		return "name already taken"
	case LoginServerFull:
		return "server is full"
	case LoginBanned:
		return "banned from server"
	case LoginBadName:
		return "invalid name"
	default:
		return fmt.Sprintf("unknown reason (%d)", byte(r))
	}
}

// Vec is a 2D integer vector, used for movement direction and position
// state values.
type Vec struct {
	X, Y int32
}

// ValueKind tags the variant stored in a StateValue.
type ValueKind byte

const (
	ValueAbsent ValueKind = 0
	ValueInt    ValueKind = 1
	ValueString ValueKind = 2
	ValueVector ValueKind = 3
)

// StateValue is the typed value carried by UPDATESTATE. Exactly the field
// matching Kind is meaningful; the struct is comparable with ==.
type StateValue struct {
	Kind ValueKind
	Int  int32
	Str  string
	Vec  Vec
}

func IntValue(v int32) StateValue     { return StateValue{Kind: ValueInt, Int: v} }
func StringValue(s string) StateValue { return StateValue{Kind: ValueString, Str: s} }
func VectorValue(x, y int32) StateValue {
	return StateValue{Kind: ValueVector, Vec: Vec{X: x, Y: y}}
}

// Variant bodies. Optional names encode as a presence byte followed by the
// string; the empty string means absent.

type Connect struct {
	Version int32
}

type Disconnect struct {
	Reason DisconnectReason
	Text   string
}

type Login struct {
	Name string
}

type LoginResult struct {
	Succeeded bool
	Reason    LoginFailReason
}

type AddEntity struct {
	ID   int32
	Name string
}

type RemoveEntity struct {
	ID   int32
	Name string
}

type UpdateState struct {
	ID    int32
	Key   string
	Value StateValue
}

type AssignControl struct {
	ID      int32
	Revoked bool
}

type EntityDeath struct {
	VictimID   int32
	VictimName string
	KillerID   int32
	KillerName string
}

type CombatHit struct {
	AttackerID   int32
	AttackerName string
	VictimID     int32
	VictimName   string
	Damage       int32
}

type Move struct {
	Dir Vec
}

// Message is the discriminated union carried by one frame. Exactly one
// variant pointer is populated, matching Type; Raw holds the body of a type
// this build does not know.
type Message struct {
	Type MsgType

	Connect       *Connect
	Disconnect    *Disconnect
	Login         *Login
	LoginResult   *LoginResult
	AddEntity     *AddEntity
	RemoveEntity  *RemoveEntity
	UpdateState   *UpdateState
	AssignControl *AssignControl
	EntityDeath   *EntityDeath
	CombatHit     *CombatHit
	Move          *Move

	Raw []byte
}

// Unwrap returns the populated variant body.
func (m *Message) Unwrap() any {
	switch {
	case m.Connect != nil:
		return m.Connect
	case m.Disconnect != nil:
		return m.Disconnect
	case m.Login != nil:
		return m.Login
	case m.LoginResult != nil:
		return m.LoginResult
	case m.AddEntity != nil:
		return m.AddEntity
	case m.RemoveEntity != nil:
		return m.RemoveEntity
	case m.UpdateState != nil:
		return m.UpdateState
	case m.AssignControl != nil:
		return m.AssignControl
	case m.EntityDeath != nil:
		return m.EntityDeath
	case m.CombatHit != nil:
		return m.CombatHit
	case m.Move != nil:
		return m.Move
	default:
		return m.Raw
	}
}

// Constructors for the messages this client originates.

func NewConnect(version int32) *Message {
	return &Message{Type: MsgConnect, Connect: &Connect{Version: version}}
}

// NewLogin NFC-normalizes the player name so that visually identical names
// compare equal on the server.
func NewLogin(name string) *Message {
	return &Message{Type: MsgLogin, Login: &Login{Name: norm.NFC.String(name)}}
}

func NewDisconnect(reason DisconnectReason, text string) *Message {
	return &Message{Type: MsgDisconnect, Disconnect: &Disconnect{Reason: reason, Text: text}}
}

func NewMove(dir Vec) *Message {
	return &Message{Type: MsgMove, Move: &Move{Dir: dir}}
}

// MalformedError reports a payload that arrived inside a valid frame but
// could not be decoded. Framing stays synchronized, so the caller may log
// it, discard the payload, and keep reading.
type MalformedError struct {
	Type   MsgType
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s message: %s", e.Type, e.Reason)
}

// Decode deserializes one frame payload into a Message.
func Decode(payload []byte) (*Message, error) {
	if len(payload) == 0 {
		return nil, &MalformedError{Reason: "empty payload"}
	}
	r := NewReader(payload)
	t := MsgType(r.ReadC())
	m := &Message{Type: t}

	switch t {
	case MsgConnect:
		m.Connect = &Connect{Version: r.ReadD()}
	case MsgDisconnect:
		m.Disconnect = &Disconnect{Reason: DisconnectReason(r.ReadC()), Text: r.ReadS()}
	case MsgLogin:
		m.Login = &Login{Name: r.ReadS()}
	case MsgLoginResult:
		m.LoginResult = &LoginResult{Succeeded: r.ReadC() != 0, Reason: LoginFailReason(r.ReadC())}
	case MsgAddEntity:
		m.AddEntity = &AddEntity{ID: r.ReadD(), Name: readOptS(r)}
	case MsgRemoveEntity:
		m.RemoveEntity = &RemoveEntity{ID: r.ReadD(), Name: readOptS(r)}
	case MsgUpdateState:
		u := &UpdateState{ID: r.ReadD(), Key: r.ReadS()}
		v, err := readStateValue(r)
		if err != nil {
			return nil, &MalformedError{Type: t, Reason: err.Error()}
		}
		u.Value = v
		m.UpdateState = u
	case MsgAssignControl:
		m.AssignControl = &AssignControl{ID: r.ReadD(), Revoked: r.ReadC() != 0}
	case MsgEntityDeath:
		m.EntityDeath = &EntityDeath{
			VictimID:   r.ReadD(),
			VictimName: r.ReadS(),
			KillerID:   r.ReadD(),
			KillerName: r.ReadS(),
		}
	case MsgCombatHit:
		m.CombatHit = &CombatHit{
			AttackerID:   r.ReadD(),
			AttackerName: r.ReadS(),
			VictimID:     r.ReadD(),
			VictimName:   r.ReadS(),
			Damage:       r.ReadD(),
		}
	case MsgMove:
		m.Move = &Move{Dir: Vec{X: r.ReadD(), Y: r.ReadD()}}
	default:
		// Unknown future type: keep the body so dispatch can log it.
		m.Raw = r.ReadBytes(r.Remaining())
		return m, nil
	}

	if err := r.Err(); err != nil {
		return nil, &MalformedError{Type: t, Reason: err.Error()}
	}
	return m, nil
}

// Encode serializes a Message into a frame payload. The discriminant and
// populated variant must be consistent.
func Encode(m *Message) ([]byte, error) {
	w := NewWriter()
	w.WriteC(byte(m.Type))

	switch m.Type {
	case MsgConnect:
		if m.Connect == nil {
			return nil, inconsistent(m.Type)
		}
		w.WriteD(m.Connect.Version)
	case MsgDisconnect:
		if m.Disconnect == nil {
			return nil, inconsistent(m.Type)
		}
		w.WriteC(byte(m.Disconnect.Reason))
		w.WriteS(m.Disconnect.Text)
	case MsgLogin:
		if m.Login == nil {
			return nil, inconsistent(m.Type)
		}
		w.WriteS(m.Login.Name)
	case MsgLoginResult:
		if m.LoginResult == nil {
			return nil, inconsistent(m.Type)
		}
		writeBool(w, m.LoginResult.Succeeded)
		w.WriteC(byte(m.LoginResult.Reason))
	case MsgAddEntity:
		if m.AddEntity == nil {
			return nil, inconsistent(m.Type)
		}
		w.WriteD(m.AddEntity.ID)
		writeOptS(w, m.AddEntity.Name)
	case MsgRemoveEntity:
		if m.RemoveEntity == nil {
			return nil, inconsistent(m.Type)
		}
		w.WriteD(m.RemoveEntity.ID)
		writeOptS(w, m.RemoveEntity.Name)
	case MsgUpdateState:
		if m.UpdateState == nil {
			return nil, inconsistent(m.Type)
		}
		w.WriteD(m.UpdateState.ID)
		w.WriteS(m.UpdateState.Key)
		writeStateValue(w, m.UpdateState.Value)
	case MsgAssignControl:
		if m.AssignControl == nil {
			return nil, inconsistent(m.Type)
		}
		w.WriteD(m.AssignControl.ID)
		writeBool(w, m.AssignControl.Revoked)
	case MsgEntityDeath:
		if m.EntityDeath == nil {
			return nil, inconsistent(m.Type)
		}
		w.WriteD(m.EntityDeath.VictimID)
		w.WriteS(m.EntityDeath.VictimName)
		w.WriteD(m.EntityDeath.KillerID)
		w.WriteS(m.EntityDeath.KillerName)
	case MsgCombatHit:
		if m.CombatHit == nil {
			return nil, inconsistent(m.Type)
		}
		w.WriteD(m.CombatHit.AttackerID)
		w.WriteS(m.CombatHit.AttackerName)
		w.WriteD(m.CombatHit.VictimID)
		w.WriteS(m.CombatHit.VictimName)
		w.WriteD(m.CombatHit.Damage)
	case MsgMove:
		if m.Move == nil {
			return nil, inconsistent(m.Type)
		}
		w.WriteD(m.Move.Dir.X)
		w.WriteD(m.Move.Dir.Y)
	default:
		if m.Raw == nil {
			return nil, inconsistent(m.Type)
		}
		w.WriteBytes(m.Raw)
	}

	return w.Bytes(), nil
}

func inconsistent(t MsgType) error {
	return fmt.Errorf("message type %s has no matching variant body", t)
}

func writeBool(w *Writer, v bool) {
	if v {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
}

func writeOptS(w *Writer, s string) {
	if s == "" {
		w.WriteC(0)
		return
	}
	w.WriteC(1)
	w.WriteS(s)
}

func readOptS(r *Reader) string {
	if r.ReadC() == 0 {
		return ""
	}
	return r.ReadS()
}

func writeStateValue(w *Writer, v StateValue) {
	w.WriteC(byte(v.Kind))
	switch v.Kind {
	case ValueInt:
		w.WriteD(v.Int)
	case ValueString:
		w.WriteS(v.Str)
	case ValueVector:
		w.WriteD(v.Vec.X)
		w.WriteD(v.Vec.Y)
	}
}

func readStateValue(r *Reader) (StateValue, error) {
	kind := ValueKind(r.ReadC())
	switch kind {
	case ValueAbsent:
		return StateValue{}, nil
	case ValueInt:
		return StateValue{Kind: ValueInt, Int: r.ReadD()}, nil
	case ValueString:
		return StateValue{Kind: ValueString, Str: r.ReadS()}, nil
	case ValueVector:
		return StateValue{Kind: ValueVector, Vec: Vec{X: r.ReadD(), Y: r.ReadD()}}, nil
	default:
		return StateValue{}, fmt.Errorf("unknown state value kind %d", byte(kind))
	}
}
