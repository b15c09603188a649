package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id VARCHAR(64) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				tags JSONB,
				category VARCHAR(255),
				enabled BOOLEAN NOT NULL DEFAULT false,
				triggers JSONB NOT NULL,
				conditions JSONB,
				actions JSONB NOT NULL,
				priority INT NOT NULL DEFAULT 5,
				max_retries INT NOT NULL DEFAULT 0,
				retry_delay INT NOT NULL DEFAULT 0,
				timeout INT NOT NULL DEFAULT 0,
				total_executions BIGINT NOT NULL DEFAULT 0,
				total_success BIGINT NOT NULL DEFAULT 0,
				total_failure BIGINT NOT NULL DEFAULT 0,
				last_execution_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_enabled ON workflows(enabled);
			CREATE INDEX idx_workflows_category ON workflows(category);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
			CREATE INDEX idx_workflows_deleted_at ON workflows(deleted_at);

			CREATE TABLE executions (
				id VARCHAR(64) PRIMARY KEY,
				workflow_id VARCHAR(64) NOT NULL,
				status VARCHAR(20) NOT NULL CHECK (status IN ('PENDING', 'RUNNING', 'SUCCESS', 'FAILED')),
				started_at TIMESTAMP WITH TIME ZONE,
				finished_at TIMESTAMP WITH TIME ZONE,
				duration_ms BIGINT NOT NULL DEFAULT 0,
				trigger_context JSONB,
				action_results JSONB NOT NULL DEFAULT '[]',
				error TEXT,
				error_kind VARCHAR(40),
				note TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_executions_workflow_id ON executions(workflow_id);
			CREATE INDEX idx_executions_started_at ON executions(started_at);
			CREATE INDEX idx_executions_status ON executions(status);
		`,
	}
}
