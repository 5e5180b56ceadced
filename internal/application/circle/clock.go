package circle

import "time"

// nowFn is replaceable in tests to control period timing
var nowFn = time.Now
