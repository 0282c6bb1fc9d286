package permission

// Capability names used across the portal.
const (
	ManageUsers            = "manage_users"
	ManageCommittees       = "manage_committees"
	ManageTenders          = "manage_tenders"
	ManageProcurementPlans = "manage_procurement_plans"
	ManageSpecifications   = "manage_specifications"
	ReviewSpecifications   = "review_specifications"
	EvaluateBids           = "evaluate_bids"
	SubmitBids             = "submit_bids"
	ManageComplaints       = "manage_complaints"
	ViewReports            = "view_reports"
)

var allCapabilities = []string{
	ManageUsers,
	ManageCommittees,
	ManageTenders,
	ManageProcurementPlans,
	ManageSpecifications,
	ReviewSpecifications,
	EvaluateBids,
	SubmitBids,
	ManageComplaints,
	ViewReports,
}

var defaultRoleSets = map[string][]string{
	"admin": {
		ManageUsers, ManageCommittees, ManageTenders,
		ManageProcurementPlans, ManageComplaints, ViewReports,
	},
	"procurement_officer": {ManageTenders, ManageProcurementPlans, ViewReports},
	"committee_member":    {ReviewSpecifications, EvaluateBids},
	"evaluator":           {EvaluateBids},
	"bidder":              {SubmitBids},
	"complaint_manager":   {ManageComplaints},
	"project_manager":     {ManageSpecifications, ViewReports},
}

// DefaultRoles builds the portal's static role-to-permission mapping,
// frozen and ready for use.
func DefaultRoles() *RoleManager {
	registry := NewRegistry()
	for _, c := range allCapabilities {
		if err := registry.Register(c); err != nil {
			panic(err)
		}
	}
	registry.Freeze()

	rm := NewRoleManager(registry)
	for role, perms := range defaultRoleSets {
		if err := rm.RegisterRole(role, perms); err != nil {
			panic(err)
		}
	}
	rm.Freeze()
	return rm
}
