// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"fmt"

	"github.com/AleutianAI/FloorOps/services/timeclock/datatypes"
)

// Key schema. Both collections are partitioned by workflow type so
// production and fulfillment never share a constraint or query scope.
//
//	tl:open:<workflow>:<user_id>  -> log_id   (open-timer uniqueness key)
//	tl:rec:<log_id>               -> TimeLog JSON
//	ss:open:<workflow>:<user_id>  -> save_id  (un-restored snapshot key)
//	ss:rec:<save_id>              -> SavedTimerState JSON
//
// The tl:open pointer existing IS the single-active-timer invariant: it is
// only ever created or deleted inside the transaction that writes the
// record it points at.

func openTimerKey(workflow datatypes.WorkflowType, userID string) []byte {
	return fmt.Appendf(nil, "tl:open:%s:%s", workflow, userID)
}

func timeLogKey(logID string) []byte {
	return fmt.Appendf(nil, "tl:rec:%s", logID)
}

func openSnapshotKey(workflow datatypes.WorkflowType, userID string) []byte {
	return fmt.Appendf(nil, "ss:open:%s:%s", workflow, userID)
}

func snapshotKey(saveID string) []byte {
	return fmt.Appendf(nil, "ss:rec:%s", saveID)
}
