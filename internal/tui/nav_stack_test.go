package tui

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestNavStackPopRefusesRoot(t *testing.T) {
	root := newWelcomeScreen()
	ns := NewNavStack(root)

	gt.Value(t, ns.Pop()).Nil()
	gt.Equal(t, ns.Len(), 1)
	gt.Value(t, ns.Top()).Equal(Screen(root))
	gt.Value(t, ns.CanGoBack()).Equal(false)
}

func TestNavStackPushPop(t *testing.T) {
	ns := NewNavStack(newWelcomeScreen())
	a := newDownloadSuccessScreen("a", "/tmp")
	b := newDownloadSuccessScreen("b", "/tmp")

	ns.Push(a)
	ns.Push(b)
	gt.Equal(t, ns.Depth(), 2)
	gt.Value(t, ns.Top()).Equal(Screen(b))

	gt.Value(t, ns.Pop()).Equal(Screen(b))
	gt.Value(t, ns.Top()).Equal(Screen(a))
	gt.True(t, ns.CanGoBack())
}

func TestNavStackPopToRoot(t *testing.T) {
	root := newWelcomeScreen()
	ns := NewNavStack(root)
	a := newDownloadSuccessScreen("a", "/tmp")
	b := newDownloadSuccessScreen("b", "/tmp")
	ns.Push(a)
	ns.Push(b)

	popped := ns.PopToRoot()
	gt.Equal(t, len(popped), 2)
	gt.Value(t, popped[0]).Equal(Screen(b))
	gt.Value(t, popped[1]).Equal(Screen(a))
	gt.Equal(t, ns.Len(), 1)
	gt.Value(t, ns.Top()).Equal(Screen(root))
}

func TestNavStackReplaceTop(t *testing.T) {
	ns := NewNavStack(newWelcomeScreen())
	ns.Push(newDownloadSuccessScreen("a", "/tmp"))
	c := newDownloadSuccessScreen("c", "/tmp")

	ns.ReplaceTop(c)
	gt.Equal(t, ns.Len(), 2)
	gt.Value(t, ns.Top()).Equal(Screen(c))
}
