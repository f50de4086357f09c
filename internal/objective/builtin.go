package objective

import "github.com/roach88/quester/internal/action"

// RegisterBuiltins installs the built-in objective types.
func RegisterBuiltins(r *Registry) {
	r.MustRegister("hasitem", hasItem{})
	r.MustRegister("wearing", wearing{})
	r.MustRegister("checkvariable", checkVariable{})
	r.MustRegister("intcompare", intCompare{})
	r.MustRegister("interactat", interactAt{})
	r.MustRegister("interactcount", interactAt{multi: true})
	r.MustRegister("killnear", killNear{})
	r.MustRegister("interactwithentity", interactWithEntity{})
	r.MustRegister("randomkill", randomKill{})
	r.MustRegister("walkdistance", walkDistance{})
	r.MustRegister("temporalstorm", temporalStorm{})
	r.MustRegister("sequence", sequence{})
	r.MustRegister("timeofday", timeOfDay{})
	r.MustRegister("landclaim", landClaim{})
	r.MustRegister("blockbreak", blockCount{kind: BlockBreak})
	r.MustRegister("blockplace", blockCount{kind: BlockPlace})
	r.MustRegister("reachwaypoint", reachWaypoint{})
}

// RegisterActions installs the actions that feed objective trackers.
func RegisterActions(r *action.Registry) {
	r.MustRegister("rollrandomkill", action.Func(rollRandomKill))
	r.MustRegister("resetwalkdistance", action.Func(resetWalkDistance))
	r.MustRegister("markinteraction", action.Func(markInteraction))
}
