package upload

import (
	"fmt"
	"io"
	"sync"
)

// Notice texts shown to the user.
const (
	MsgNotReady   = "No file selected or user not logged in"
	MsgInProgress = "An upload is already in progress"
	MsgSuccess    = "File uploaded successfully"
	MsgFailure    = "Error uploading file"
)

// NoticeLevel distinguishes success from failure notices.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a single user-visible message.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// WriterNotifier prints notices as lines, e.g. "[error] Error uploading file".
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier returns a Notifier writing to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "[%s] %s\n", notice.Level, notice.Message)
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}
