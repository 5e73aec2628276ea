package ui

import (
	"testing"

	fynetest "fyne.io/fyne/v2/test"

	"github.com/nozzlewatch/nozzlewatch/internal/config"
	"github.com/nozzlewatch/nozzlewatch/internal/notifications"
)

func TestStartNotificationServiceRegistersLifecycleHooks(t *testing.T) {
	base := fynetest.NewApp()
	t.Cleanup(base.Quit)

	lifecycle := &lifecycleSpy{}
	app := &lifecycleAppSpy{App: base, lifecycle: lifecycle}
	dep := RuntimeDependencies{
		Data: DataDependencies{CurrentConfig: config.Default},
	}

	stop := startNotificationService(dep, app, true)
	if stop == nil {
		t.Fatalf("expected notification stop function")
	}
	if lifecycle.onEnteredForeground == nil || lifecycle.onExitedForeground == nil {
		t.Fatalf("expected foreground hooks to be registered")
	}

	lifecycle.onEnteredForeground()
	lifecycle.onExitedForeground()
	stop()
	stop()
}

func TestStartNotificationServiceAttachesAndDetachesSender(t *testing.T) {
	base := fynetest.NewApp()
	t.Cleanup(base.Quit)

	var attached []notifications.Sender
	dep := RuntimeDependencies{
		Actions: ActionDependencies{
			AttachNotifier: func(sender notifications.Sender) {
				attached = append(attached, sender)
			},
		},
	}

	stop := startNotificationService(dep, &lifecycleAppSpy{App: base, lifecycle: &lifecycleSpy{}}, false)
	if len(attached) != 1 {
		t.Fatalf("expected sender attached once, got %d", len(attached))
	}
	if _, ok := attached[0].(*FyneNotificationSender); !ok {
		t.Fatalf("expected fyne sender, got %T", attached[0])
	}

	stop()
	stop()
	if len(attached) != 2 || attached[1] != nil {
		t.Fatalf("expected sender detached once on stop, got %+v", attached)
	}
}
