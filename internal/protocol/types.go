package protocol

// Type identifies the kind of a packet. The zero value never appears
// on the wire.
type Type uint8

const (
	TypeNone Type = iota

	// Client requests.
	TypeLogin
	TypeUsers
	TypeInvite
	TypeRevoke
	TypeAccept
	TypeDecline
	TypeMove
	TypeResign

	// Server responses to the most recent request.
	TypeAck
	TypeNack

	// Server notifications, delivered at any time after login.
	TypeInvited
	TypeRevoked
	TypeAccepted
	TypeDeclined
	TypeMoved
	TypeResigned
	TypeEnded
)

// IsRequest reports whether t is a type a client is allowed to send.
func (t Type) IsRequest() bool {
	return t >= TypeLogin && t <= TypeResign
}

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "NONE"
	case TypeLogin:
		return "LOGIN"
	case TypeUsers:
		return "USERS"
	case TypeInvite:
		return "INVITE"
	case TypeRevoke:
		return "REVOKE"
	case TypeAccept:
		return "ACCEPT"
	case TypeDecline:
		return "DECLINE"
	case TypeMove:
		return "MOVE"
	case TypeResign:
		return "RESIGN"
	case TypeAck:
		return "ACK"
	case TypeNack:
		return "NACK"
	case TypeInvited:
		return "INVITED"
	case TypeRevoked:
		return "REVOKED"
	case TypeAccepted:
		return "ACCEPTED"
	case TypeDeclined:
		return "DECLINED"
	case TypeMoved:
		return "MOVED"
	case TypeResigned:
		return "RESIGNED"
	case TypeEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}
