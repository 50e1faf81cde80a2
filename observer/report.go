package observer

import (
	"fmt"

	"github.com/eastcoast-online/envcheck/observer/probers"
)

func successLine(res probers.Result) string {
	return fmt.Sprintf("%s Status: %d Response time: %dms\n", res.URL, res.StatusCode, res.Millis())
}

func failureLine(url string) string {
	return fmt.Sprintf("%s Failed.\n", url)
}
