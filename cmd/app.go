package cmd

import (
	"formatlink/pkg/clip"
	"formatlink/pkg/clipboard"
	"formatlink/pkg/config"
	"formatlink/pkg/errors"
	"formatlink/pkg/host"
	"formatlink/pkg/linkfmt"
	"formatlink/pkg/logger"
	"formatlink/pkg/notify"
	"formatlink/pkg/offscreen"
	"formatlink/pkg/store"
)

// app bundles what a command needs to render and copy links.
type app struct {
	cfg     *config.Config
	catalog *linkfmt.Catalog
	store   *store.Manager
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing store")
		}
	}
}

func dbPath(cfg *config.Config) string {
	if cfg.Database != "" {
		return cfg.Database
	}
	return store.GetDBPath()
}

// newApp loads config, the format catalog and the store. A store that
// cannot be opened is logged and left nil unless requireStore is set.
func newApp(requireStore bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	catalog, err := linkfmt.LoadCatalog()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, catalog: catalog}

	m, err := store.NewManager(dbPath(cfg))
	if err != nil {
		if requireStore {
			return nil, errors.StorageError("failed to open store", err)
		}
		logger.Warn().Err(err).Msg("store unavailable, history and format toggles disabled")
		return a, nil
	}
	a.store = m

	prefs, err := m.Preferences()
	if err != nil {
		logger.Warn().Err(err).Msg("loading preferences")
	} else {
		config.ApplyPreferences(cfg, prefs)
	}

	states, err := m.FormatStates()
	if err != nil {
		logger.Warn().Err(err).Msg("loading format toggles")
	} else {
		catalog.ApplyEnabled(states)
	}

	return a, nil
}

func newNotifier() notify.Notifier {
	return notify.Fallback{notify.NewDesktop(), notify.NewTerminal()}
}

// newPlatform returns the in-process clipboard capabilities for mode.
func newPlatform(mode string) clip.Platform {
	p := clip.Platform{Notifier: newNotifier()}
	switch mode {
	case config.ClipboardDirect:
		p.Text = clipboard.System{}
	case config.ClipboardEvent:
		p.Events = clipboard.NewDispatcher(clipboard.System{})
	default:
		p.Text = clipboard.System{}
		p.Events = clipboard.NewDispatcher(clipboard.System{})
	}
	return p
}

func newCopier(mode string) host.Copier {
	if mode == config.ClipboardOffscreen {
		return host.ProxyCopier{Proxy: &offscreen.Proxy{Launcher: offscreen.SelfLauncher()}}
	}
	return host.ClipCopier{Platform: newPlatform(mode)}
}

// newRouter wires the message router. prompter may be nil.
func (a *app) newRouter(prompter linkfmt.Prompter, notifyOnCopy bool) *host.Router {
	opts := []linkfmt.Option{}
	if prompter != nil {
		opts = append(opts, linkfmt.WithPrompter(prompter))
	}
	if a.cfg.PromptMessage != "" {
		opts = append(opts, linkfmt.WithPromptMessage(a.cfg.PromptMessage))
	}

	r := &host.Router{
		Engine:   linkfmt.NewEngine(opts...),
		Copier:   newCopier(a.cfg.Clipboard.Mode),
		Prompter: prompter,
		Notifier: newNotifier(),
		Notify:   notifyOnCopy,
	}
	if a.store != nil && a.cfg.History.Enabled {
		r.History = a.store
	}
	return r
}

// copyData builds the request for one link in format id.
func (a *app) copyData(id, content, title, url string, prompt bool) (linkfmt.CopyData, error) {
	if id == "" {
		id = a.cfg.Format
	}
	spec, err := a.catalog.Resolve(id)
	if err != nil {
		return linkfmt.CopyData{}, err
	}
	if !spec.Enabled {
		return linkfmt.CopyData{}, errors.NewWithSuggestion(errors.ExitCodeInvalidArgument,
			"format "+spec.ID+" is disabled",
			"Enable it with: formatlink formats enable "+spec.ID)
	}
	return linkfmt.CopyData{
		Content:       content,
		Title:         title,
		URL:           url,
		FormatID:      spec.ID,
		FormatTitle:   spec.DisplayTitle(),
		PromptContent: prompt,
		Template:      spec.Template,
		TemplateAlt:   spec.TemplateAlt,
	}, nil
}
