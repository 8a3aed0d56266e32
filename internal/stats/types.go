package stats

// Classification is the health bucket a project falls into.
type Classification string

const (
	ClassCompleted  Classification = "completed"
	ClassAtRisk     Classification = "at-risk"
	ClassDelayed    Classification = "delayed"
	ClassInProgress Classification = "in-progress"
)

// Classification thresholds. Fixed by product definition.
const (
	AtRiskThreshold      = 30 // riskLevel strictly above this is at-risk
	DelayedThreshold     = 70 // timeEfficiency strictly below this is delayed
	EfficiencyAdvisory   = 80 // average efficiency below this triggers a recommendation
	TasksPerMemberTarget = 5  // open tasks one member is expected to carry
)

// PerformanceMetrics holds the derived indicators for a single project.
// All percentages are integers in [0, 100]; durations are whole days.
type PerformanceMetrics struct {
	ProjectID           string         `json:"projectId"`
	Name                string         `json:"name"`
	Status              Classification `json:"status"`
	CompletionRate      int            `json:"completionRate"`
	TimeEfficiency      int            `json:"timeEfficiency"`
	RiskLevel           int            `json:"riskLevel"`
	ResourceUtilization int            `json:"resourceUtilization"`
	TaskCount           int            `json:"taskCount"`
	CompletedTaskCount  int            `json:"completedTaskCount"`
	LateTaskCount       int            `json:"lateTaskCount"`
	PlannedDuration     int            `json:"plannedDuration"`
	ActualDuration      int            `json:"actualDuration"`
	TeamSize            int            `json:"teamSize"`
}

// KPISummary folds per-project metrics into portfolio indicators.
type KPISummary struct {
	AverageCompletionRate int     `json:"averageCompletionRate"`
	AverageTimeEfficiency int     `json:"averageTimeEfficiency"`
	MedianCompletionRate  float64 `json:"medianCompletionRate"`
	TotalRisks            int     `json:"totalRisks"`
	ProjectsAtRisk        int     `json:"projectsAtRisk"`
	TotalProjects         int     `json:"totalProjects"`
	TotalTasks            int     `json:"totalTasks"`
	CompletedTasks        int     `json:"completedTasks"`
}

// ProjectChartPoint is one bar-chart row.
type ProjectChartPoint struct {
	ProjectID      string `json:"projectId"`
	Name           string `json:"name"`
	Completion     int    `json:"completion"`
	Efficiency     int    `json:"efficiency"`
	Risk           int    `json:"risk"`
	TaskCount      int    `json:"taskCount"`
	CompletedTasks int    `json:"completedTasks"`
	LateTasks      int    `json:"lateTasks"`
}

// StatusDistribution counts projects per classification bucket.
type StatusDistribution struct {
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Delayed    int `json:"delayed"`
	AtRisk     int `json:"atRisk"`
}

// RadarSeries is one project's polygon on a radar chart. Safety is the
// inverse of risk so that a larger area is always better.
type RadarSeries struct {
	Name        string `json:"name"`
	Completion  int    `json:"completion"`
	Efficiency  int    `json:"efficiency"`
	Safety      int    `json:"safety"`
	Utilization int    `json:"utilization"`
}

// Charts is the chart-ready reshaping of per-project metrics.
type Charts struct {
	Performance        []ProjectChartPoint `json:"performance"`
	StatusDistribution StatusDistribution  `json:"statusDistribution"`
	Radar              []RadarSeries       `json:"radar"`
}

type RecommendationType string

const (
	RecommendationWarning RecommendationType = "warning"
	RecommendationSuccess RecommendationType = "success"
	RecommendationInfo    RecommendationType = "info"
)

// Recommendation is a human-readable advisory entry.
type Recommendation struct {
	Type    RecommendationType `json:"type"`
	Title   string             `json:"title"`
	Message string             `json:"message"`
}
