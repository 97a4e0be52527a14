package session

import "regexp"

// Pre-compiled patterns matched against the message body (never the
// timestamp prefix). A single message may satisfy more than one pattern;
// the timeline state machine resolves precedence, not this table.
// Flip phrasing varies across NINA versions, so those match
// case-insensitively and accept the known equivalent forms.
var (
	// Autofocus
	reFocusStart = regexp.MustCompile(`\bStarting Category:\s*Focuser,\s*Item:\s*RunAutofocus\b`)
	reFocusDone  = regexp.MustCompile(`\bAutoFocus completed\b`)

	// Slew / solve / center block
	reCenterStart  = regexp.MustCompile(`\bStarting Category:\s*Telescope,\s*Item:\s*Center\b`)
	reCenterFinish = regexp.MustCompile(`\bFinishing Category:\s*Telescope,\s*Item:\s*Center\b`)

	// Intentional waits
	reWaitTimeBegin   = regexp.MustCompile(`\bStarting Category:\s*Utility,\s*Item:\s*WaitForTime\b`)
	reWaitAltBegin    = regexp.MustCompile(`\bStarting Category:\s*Utility,\s*Item:\s*WaitForAltitude\b`)
	reWaitSafeBegin   = regexp.MustCompile(`\bStarting Category:\s*Safety Monitor,\s*Item:\s*WaitUntilSafe\b`)
	reWaitGenericEnd  = regexp.MustCompile(`\bFinishing Category:\s*(Utility|Safety Monitor),`)

	// Roof idle (tracked independently from the wait slot)
	reRoofClosing = regexp.MustCompile(`(?i)\bRoof closing\b`)
	reRoofOpening = regexp.MustCompile(`(?i)\bRoof opening\b`)

	// Captures: "Starting Exposure - Exposure Time: 300s"
	reCaptureBegin = regexp.MustCompile(`\bStarting Exposure - Exposure Time:\s*([0-9]+(?:\.[0-9]+)?)s\b`)

	// Meridian flip. Generic initialization markers only; lines like
	// "There is still time remaining" must not open a flip.
	reFlipStart = regexp.MustCompile(`(?i)(?:Meridian Flip.*(?:Initializing Meridian Flip|Starting Meridian Flip|DoMeridianFlip|DoFlip|Starting Trigger: MeridianFlipTrigger)|Initializing Meridian Flip)`)

	// Physical flip start (scope actually slewing). Preferred over a
	// generic start: it can advance an already-open flip's start time.
	reFlipPhysicalStart = regexp.MustCompile(`(?i)(?:Slewing to coordinates|AscomTelescope\.cs\|MeridianFlip.*Slewing to coordinates|Meridian Flip - Scope will flip to coordinates|MeridianFlipVM\.cs\|DoFlip)`)

	// Flip completion. The recenter/resume-autoguider marker usually
	// appears before the generic "Exiting" line; whichever comes first
	// closes the flip.
	reFlipDoneAlt = regexp.MustCompile(`(?i)(?:Meridian Flip.*Recenter after meridian flip|Meridian Flip.*Resuming Autoguider|ResumeAutoguider|Resuming Autoguider)`)
	reFlipDone    = regexp.MustCompile(`(?i)(?:Meridian Flip.*(?:completed|finished|Exiting meridian flip)|Exiting meridian flip)`)

	// Correlation-only markers (no segment of their own)
	reDitherStart  = regexp.MustCompile(`\bStarting Category:\s*Guider,\s*Item:\s*Dither\b`)
	reFilterChange = regexp.MustCompile(`\bStarting Category:\s*Filter Wheel,\s*Item:\s*SwitchFilter\b`)

	// Guiding RMS warnings: "Total RMS above threshold (2.1 / 1.1)"
	reRMSThreshold = regexp.MustCompile(`(?i)\b(Total|RA|Dec)\s+RMS above threshold\s*\(\s*([0-9]*\.?[0-9]+)\s*/\s*([0-9]*\.?[0-9]+)\s*\)`)

	// Monitored guider settings. These appear when a profile loads or a
	// value is edited mid-session.
	reSettlePixels       = regexp.MustCompile(`(?i)\bSettlePixels\s*[:=]\s*([0-9]*\.?[0-9]+)`)
	reSettleTime         = regexp.MustCompile(`(?i)\bSettleTime\s*[:=]\s*([0-9]*\.?[0-9]+)`)
	reRMSThresholdConfig = regexp.MustCompile(`(?i)\bGuidingRMSThreshold\s*[:=]\s*([0-9]*\.?[0-9]+)`)
	reDitherPixels       = regexp.MustCompile(`(?i)\bDitherPixels\s*[:=]\s*([0-9]*\.?[0-9]+)`)
	reRMSPoints          = regexp.MustCompile(`(?i)\bRMSPoints\s*[:=]\s*([0-9]+)`)
)
