package core

import (
	"mybest-backend/lib/restyutil"
	"mybest-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("mybest.lib.scrapers.elearning.core")

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables http transcript dumps for every
// client created by this package. Pass nil to turn them back off.
func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

// deferredOutput reads the package-level output at write time so
// SetRestyInstrumentOutput takes effect even after NewClient.
type deferredOutput struct{}

func (deferredOutput) Write(id string, contents string) {
	if restyInstrumentOutput != nil {
		restyInstrumentOutput.Write(id, contents)
	}
}
