// Package main provides the FocusDeck desktop entrypoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"focusdeck/internal/core/session"
	"focusdeck/internal/focus"
	"focusdeck/internal/platform"
	"focusdeck/internal/storage"
	"focusdeck/internal/tasks"
	"focusdeck/internal/ui/dashboard"
	"focusdeck/internal/ui/miniplayer"
	"focusdeck/internal/ui/preferences"
	"focusdeck/internal/ui/tray"
	"focusdeck/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/cobra"
)

const (
	appName = "FocusDeck"
	appID   = "com.focusdeck.app"

	taskLoadTimeout = 2 * time.Second
)

var taskDBPath = func() (string, error) {
	return platform.TaskDBPath(appName)
}

type runFlags struct {
	muted         bool
	reducedMotion bool
	customMinutes int
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &runFlags{}
	rootCmd := &cobra.Command{
		Use:          "focusdeck",
		Short:        "Focus timer with ambient noise and a mini-player",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, flags)
		},
	}
	rootCmd.Flags().BoolVar(&flags.muted, "muted", false, "start with the completion alarm muted")
	rootCmd.Flags().BoolVar(&flags.reducedMotion, "reduced-motion", false, "disable the scene drift and alarm pulse")
	rootCmd.Flags().IntVar(&flags.customMinutes, "custom-minutes", 0, "custom mode duration for this run")

	rootCmd.AddCommand(newTaskCmd())
	return rootCmd
}

// overrideSettings applies only the flags given on the command line.
func overrideSettings(cmd *cobra.Command, flags *runFlags, settings preferences.Settings) preferences.Settings {
	if cmd.Flags().Changed("muted") {
		settings.Muted = flags.muted
	}
	if cmd.Flags().Changed("reduced-motion") {
		settings.ReducedMotion = flags.reducedMotion
	}
	if cmd.Flags().Changed("custom-minutes") {
		settings.CustomMinutes = flags.customMinutes
	}
	return settings.Normalized()
}

func runApp(cmd *cobra.Command, flags *runFlags) error {
	guard, err := platform.AcquireSingleInstance(appName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		if signalErr := platform.SignalRunning(appName); signalErr != nil {
			log.Printf("single instance: %v", signalErr)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("single instance: %w", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		log.Printf("settings: %v", err)
	}
	settings = overrideSettings(cmd, flags, settings)

	var taskSource focus.TaskSource
	if path, err := taskDBPath(); err != nil {
		log.Printf("tasks: %v", err)
	} else if store, err := tasks.Open(path); err != nil {
		log.Printf("tasks: %v", err)
	} else {
		defer store.Close()
		taskSource = store
	}

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.AppIcon())

	service := focus.New(focus.Options{
		Config: settings.SessionConfig(),
		Noise:  settings.NoiseConfig(),
		Tasks:  taskSource,
	})
	defer service.Shutdown()

	factory := miniplayer.NewFactory(fyneApp, service, miniplayer.Config{Opacity: settings.MiniPlayerOpacity})
	service.Mirror().SetFactory(factory)

	viewConfig := dashboard.DefaultConfig()
	viewConfig.ReducedMotion = settings.ReducedMotion
	view := dashboard.New(fyneApp, service, viewConfig)
	service.Mirror().Subscribe(view)

	guard.OnActivate(func() {
		fyne.Do(view.Show)
	})

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		settings = updated
		if err := storage.SaveSettings(appName, settings); err != nil {
			log.Printf("settings: %v", err)
		}
		service.ApplyConfig(settings.SessionConfig())
		if service.State().Muted != settings.Muted {
			service.ToggleMute()
		}
		service.SetNoiseLevel(settings.AmbientLevel)
		view.SetReducedMotion(settings.ReducedMotion)
		factory.SetOpacity(settings.MiniPlayerOpacity)
	})

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager := tray.New(desktopApp, tray.Callbacks{
			OnShow:        view.Show,
			OnToggle:      service.Toggle,
			OnReset:       service.Reset,
			OnMode:        service.SwitchMode,
			OnMute:        func() { service.ToggleMute() },
			OnNoise:       func() { service.ToggleNoise() },
			OnPopOut:      service.OpenMirror,
			OnPreferences: prefsWindow.Show,
			OnQuit:        fyneApp.Quit,
		})
		desktopApp.SetSystemTrayIcon(resources.TrayIcon())
		service.Mirror().Subscribe(trayManager)
	} else {
		log.Printf("system tray unsupported on this platform")
	}

	go notifyCompletions(fyneApp, service.Completions())

	ctx, cancel := context.WithTimeout(cmd.Context(), taskLoadTimeout)
	if err := service.RefreshTask(ctx); err != nil {
		log.Printf("tasks: %v", err)
	}
	cancel()

	service.Start()
	view.Show()
	fyneApp.Run()
	view.Close()
	return nil
}

func notifyCompletions(fyneApp fyne.App, completions <-chan session.Event) {
	for event := range completions {
		fyneApp.SendNotification(completionNotice(event.State))
	}
}

func completionNotice(state session.State) *fyne.Notification {
	if state.Mode == session.ModeFocus || state.Mode == session.ModeCustom {
		return fyne.NewNotification(appName, fmt.Sprintf("%s session complete. Time for a break.", state.Mode.Label()))
	}
	return fyne.NewNotification(appName, fmt.Sprintf("%s is over. Ready to focus?", state.Mode.Label()))
}
