package tracking

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// NewProgressBarHook returns a ProgressHook that renders a progress bar to
// w as revisions are processed. total is filled in by Run at call time;
// the bar is created lazily on the first call so it can size itself
// correctly regardless of how the caller obtained the revision count.
func NewProgressBarHook(w io.Writer) ProgressHook {
	var bar *progressbar.ProgressBar
	return func(index, total int, revisionID string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription("tracking revisions"),
			)
		}
		_ = bar.Set(index + 1)
	}
}
