// Package platform sends desktop notifications through the host's native
// notification service.
package platform

// AppName identifies the application to the notification service.
const AppName = "snipt"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file shown with the
	// notification where the platform supports it.
	IconPath string
	// TimeoutMillis overrides the display time. Zero uses five seconds.
	TimeoutMillis int32
}

func (o Options) timeout() int32 {
	if o.TimeoutMillis > 0 {
		return o.TimeoutMillis
	}
	return 5000
}
