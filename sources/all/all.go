package all

import (
	// Import all the sources so they register themselves
	_ "github.com/darianmavgo/geoingest/sources/csv"
	_ "github.com/darianmavgo/geoingest/sources/excel"
	_ "github.com/darianmavgo/geoingest/sources/html"
)
