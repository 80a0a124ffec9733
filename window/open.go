package window

import (
	"fmt"
	"net/url"

	"github.com/chrisuehlinger/vibewindow/domerror"
	"github.com/chrisuehlinger/vibewindow/features"
)

// windowType classifies the navigable chosen for an open() call.
type windowType int

const (
	windowTypeExisting windowType = iota
	windowTypeNew
	windowTypeNewNoOpener
)

// chooseNavigable applies the rules for choosing a navigable: special
// targets resolve to the opener itself, a named target reuses an
// existing window of that name or creates one, and "_blank" always
// creates.
func (h *Host) chooseNavigable(opener *Window, target string, noopener bool) (*Window, windowType) {
	newType := windowTypeNew
	if noopener {
		newType = windowTypeNewNoOpener
	}

	switch target {
	case "_self", "_parent", "_top":
		// Flat window model: parent and top are the window itself.
		return opener, windowTypeExisting
	case "_blank":
		return h.NewWindow("", nil), newType
	}

	if existing := h.FindNamed(target); existing != nil {
		return existing, windowTypeExisting
	}
	return h.NewWindow(target, nil), newType
}

// Open runs the window-open steps: tokenize features, strip the
// noopener/noreferrer boolean features, choose a navigable, classify
// popup intent for new windows, and navigate. It returns nil (with no
// error) when termination is in progress, when no navigable could be
// chosen, or when noopener/noreferrer suppress the reference; it fails
// with an InvalidURL error when url is non-empty and unparseable.
func (w *Window) Open(rawURL, target, featureString string) (*Window, error) {
	if w.host.Terminating() {
		return nil, nil
	}

	if target == "" {
		target = "_blank"
	}

	table := features.Tokenize(featureString)

	noopener, noreferrer := false, false
	if v, ok := table.Get("noopener"); ok {
		noopener = features.ParseBool(v)
		table.Remove("noopener")
	}
	if v, ok := table.Get("noreferrer"); ok {
		noreferrer = features.ParseBool(v)
		table.Remove("noreferrer")
	}
	if noreferrer {
		noopener = true
	}

	targetWin, wtype := w.host.chooseNavigable(w, target, noopener)
	if targetWin == nil {
		return nil, nil
	}

	if wtype == windowTypeNew || wtype == windowTypeNewNoOpener {
		targetWin.mu.Lock()
		targetWin.popup = features.ClassifyPopupIntent(table)
		if wtype == windowTypeNew {
			targetWin.opener = w
		}
		targetWin.mu.Unlock()

		if rawURL != "" {
			parsed, err := w.parseOpenURL(rawURL)
			if err != nil {
				return nil, err
			}
			if parsed.Scheme == "about" && parsed.Opaque == "blank" {
				targetWin.Document().SetURL(rawURL)
			} else if err := w.host.navigate(targetWin, parsed.String()); err != nil {
				return nil, err
			}
		}
	} else {
		if rawURL != "" {
			parsed, err := w.parseOpenURL(rawURL)
			if err != nil {
				return nil, err
			}
			if err := w.host.navigate(targetWin, parsed.String()); err != nil {
				return nil, err
			}
		}
		if !noopener {
			targetWin.mu.Lock()
			targetWin.opener = w
			targetWin.mu.Unlock()
		}
	}

	if noopener || wtype == windowTypeNewNoOpener {
		return nil, nil
	}
	return targetWin, nil
}

// parseOpenURL parses an open() target URL, resolving relative
// references against the opener's document URL.
func (w *Window) parseOpenURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, domerror.InvalidURL(fmt.Sprintf("URL is not valid: %q", rawURL))
	}
	if parsed.IsAbs() {
		return parsed, nil
	}

	base, err := url.Parse(w.Document().URL())
	if err != nil || !base.IsAbs() || base.Host == "" {
		return nil, domerror.InvalidURL(fmt.Sprintf("URL is not valid: %q", rawURL))
	}
	return base.ResolveReference(parsed), nil
}
