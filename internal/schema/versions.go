package schema

// version5 predates the ILP bound and gap columns.
var version5 = &Version{
	ID:     5,
	Fields: []Field{
		{"FILE-VERSION", Integer},
		{"K", Integer},
		{"SEED", Integer},
		{"ILP AM1 SCORE", Float},
		{"ILP AM2 SCORE", Float},
		{"ILP AM3 SCORE", Float},
		{"ILP AM1 TIME", Float},
		{"ILP AM2 TIME", Float},
		{"ILP AM3 TIME", Float},
		{"GREEDY AM1 SCORE", Float},
		{"GREEDY AM2 SCORE", Float},
		{"GREEDY AM3 SCORE", Float},
		{"GREEDY AM1 TIME", Float},
		{"GREEDY AM2 TIME", Float},
		{"GREEDY AM3 TIME", Float},
		{"INTGRAPH AM1 SCORE", Float},
		{"INTGRAPH AM2 SCORE", Float},
		{"INTGRAPH AM3 SCORE", Float},
		{"INTGRAPH AM1 TIME", Float},
		{"INTGRAPH AM2 TIME", Float},
		{"INTGRAPH AM3 TIME", Float},
		{"ROTATIONAL CONFLICT TIME", Float},
		{"ZOOMING CONFLICT TIME", Float},
		{"PATH CREATION TIME", Float},
		{"INTERPOLATION TIME", Float},
		{"GRAPH AM1 TIME", Float},
		{"GRAPH AM2 TIME", Float},
		{"GRAPH AM3 TIME", Float},
		{"NUMBER OF CONFLICTS", Integer},
		{"NUMBER OF VISIBILITIES", Integer},
		{"TRAJECTORY LENGTH", Float},
		{"TRAJECTORY SIZE", Integer},
		{"VISIBILITIES LENGTH", Float},
		{"CONFLICTS LENGTH", Float},
		{"AM1 GRAPH NODES", Integer},
		{"AM1 GRAPH EDGES", Integer},
		{"AM2 GRAPH NODES", Integer},
		{"AM2 GRAPH EDGES", Integer},
		{"AM3 GRAPH NODES", Integer},
		{"AM3 GRAPH EDGES", Integer},
	},
}

// version6 adds BOUND and GAP for each ILP aggregation mode.
var version6 = &Version{
	ID:     6,
	Fields: []Field{
		{"FILE-VERSION", Integer},
		{"K", Integer},
		{"SEED", Integer},
		{"ILP AM1 SCORE", Float},
		{"ILP AM2 SCORE", Float},
		{"ILP AM3 SCORE", Float},
		{"ILP AM1 BOUND", Float},
		{"ILP AM2 BOUND", Float},
		{"ILP AM3 BOUND", Float},
		{"ILP AM1 GAP", Float},
		{"ILP AM2 GAP", Float},
		{"ILP AM3 GAP", Float},
		{"ILP AM1 TIME", Float},
		{"ILP AM2 TIME", Float},
		{"ILP AM3 TIME", Float},
		{"GREEDY AM1 SCORE", Float},
		{"GREEDY AM2 SCORE", Float},
		{"GREEDY AM3 SCORE", Float},
		{"GREEDY AM1 TIME", Float},
		{"GREEDY AM2 TIME", Float},
		{"GREEDY AM3 TIME", Float},
		{"INTGRAPH AM1 SCORE", Float},
		{"INTGRAPH AM2 SCORE", Float},
		{"INTGRAPH AM3 SCORE", Float},
		{"INTGRAPH AM1 TIME", Float},
		{"INTGRAPH AM2 TIME", Float},
		{"INTGRAPH AM3 TIME", Float},
		{"ROTATIONAL CONFLICT TIME", Float},
		{"ZOOMING CONFLICT TIME", Float},
		{"PATH CREATION TIME", Float},
		{"INTERPOLATION TIME", Float},
		{"GRAPH AM1 TIME", Float},
		{"GRAPH AM2 TIME", Float},
		{"GRAPH AM3 TIME", Float},
		{"NUMBER OF CONFLICTS", Integer},
		{"NUMBER OF VISIBILITIES", Integer},
		{"TRAJECTORY LENGTH", Float},
		{"TRAJECTORY SIZE", Integer},
		{"VISIBILITIES LENGTH", Float},
		{"CONFLICTS LENGTH", Float},
		{"AM1 GRAPH NODES", Integer},
		{"AM1 GRAPH EDGES", Integer},
		{"AM2 GRAPH NODES", Integer},
		{"AM2 GRAPH EDGES", Integer},
		{"AM3 GRAPH NODES", Integer},
		{"AM3 GRAPH EDGES", Integer},
	},
}

var registry = map[int]*Version{
	5: version5,
	6: version6,
}
