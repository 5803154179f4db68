//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/example/snipt/internal/compose"
)

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	portalMethod    = "org.freedesktop.portal.Screenshot.Screenshot"
	portalResponse  = "org.freedesktop.portal.Request.Response"
	portalCancelled = 1
)

var errPortalCancelled = errors.New("portal screenshot cancelled")

var portalHandleToken = func() string {
	return fmt.Sprintf("snipt_%d", time.Now().UnixNano())
}

func portalScreenshot(ctx context.Context, opts portalOptions) (*image.RGBA, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("dbus connect: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Printf("dbus close: %v", cerr)
		}
	}()

	// Subscribe before calling so a fast portal cannot answer unseen.
	sigc := make(chan *dbus.Signal, 4)
	conn.Signal(sigc)
	defer conn.RemoveSignal(sigc)
	match := []dbus.MatchOption{
		dbus.WithMatchInterface("org.freedesktop.portal.Request"),
		dbus.WithMatchMember("Response"),
	}
	if err := conn.AddMatchSignalContext(ctx, match...); err != nil {
		return nil, fmt.Errorf("portal screenshot subscribe: %w", err)
	}
	defer func() {
		if err := conn.RemoveMatchSignal(match...); err != nil {
			log.Printf("portal remove match: %v", err)
		}
	}()

	var handle dbus.ObjectPath
	obj := conn.Object(portalDest, portalPath)
	if err := obj.CallWithContext(ctx, portalMethod, 0, "", portalScreenshotOptions(opts)).Store(&handle); err != nil {
		return nil, fmt.Errorf("portal screenshot call: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sig, ok := <-sigc:
			if !ok {
				return nil, fmt.Errorf("portal screenshot: session bus closed")
			}
			if sig.Path != handle || sig.Name != portalResponse {
				continue
			}
			return decodePortalResponse(sig.Body)
		}
	}
}

func decodePortalResponse(body []interface{}) (*image.RGBA, error) {
	if len(body) < 2 {
		return nil, fmt.Errorf("portal screenshot: malformed response")
	}
	code, _ := body[0].(uint32)
	if code == portalCancelled {
		return nil, errPortalCancelled
	}
	if code != 0 {
		return nil, fmt.Errorf("portal screenshot: response code %d", code)
	}
	res, _ := body[1].(map[string]dbus.Variant)
	uriVar, ok := res["uri"]
	if !ok {
		return nil, fmt.Errorf("portal screenshot: response missing image data")
	}
	uri, _ := uriVar.Value().(string)
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return nil, fmt.Errorf("portal screenshot: unexpected uri %q", uri)
	}
	return loadAndRemovePNG(u.Path)
}

func portalScreenshotOptions(opts portalOptions) map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"interactive":  dbus.MakeVariant(opts.Interactive),
		"modal":        dbus.MakeVariant(opts.Interactive),
		"handle_token": dbus.MakeVariant(portalHandleToken()),
	}
}

// loadAndRemovePNG reads the portal's temporary file and deletes it.
func loadAndRemovePNG(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("portal screenshot image: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("remove %s: %v", path, err)
	}
	img, err := compose.DecodePNG(data)
	if err != nil {
		return nil, fmt.Errorf("portal screenshot image: %w", err)
	}
	return img, nil
}
