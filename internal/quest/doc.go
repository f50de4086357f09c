// Package quest holds quest definitions and per-player quest logs.
//
// Definitions are written in CUE under a top-level `quest` struct, one field
// per quest:
//
//	quest: wolfhunt: {
//		title: "Thin the pack"
//		giver: "trader-*"
//		objectives: [{
//			type: "killnear"
//			id:   "wolves"
//			args: ["wolfhunt", "wolves", "0,70,0", 40, "wolf-*", 3]
//			onComplete: "notify 'The pack is thinning'"
//		}]
//		onAccept:   "rollrandomkill wolfhunt 1 2 4 hyena-* fox-*"
//		onComplete: ["notify 'Well done'"]
//		rewards: [{code: "gear-rusty", amount: 2}]
//		randomRewards: {select: 1, items: [{code: "flint", weight: 3}, {code: "copper"}]}
//	}
//
// Definitions are immutable once compiled. Registry swaps the whole set on
// reload.
package quest
