// Package config loads Fox and Geese missions from YAML files.
//
// Mission files live in the missions directory and may hold any number of
// missions keyed by id:
//
//	missions:
//	  classic:
//	    name: Classic
//	    map width: 5
//	    map height: 3
//	    fox:
//	      position: {x: 2, y: 1}
//	    geese:
//	      - position: {x: 0, y: 0}
//	      - position: {x: 4, y: 0}
//	        ai: wait
//	      - position: {x: 2, y: 2}
//	        ai: replay
//	        instructions: [D, W]
//
// Geese chase the fox unless ai says otherwise. Parsed missions are cached
// and concurrent loads of the same id are collapsed into one.
//
// The default mission is "classic" when present, otherwise the first
// mission found, otherwise a built-in 5x2 mission.
package config
